package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/service/gateway"
)

var upgrader = websocket.Upgrader{}

// newWSServer starts a websocket server that runs serve for each accepted
// connection and returns its ws:// URL.
func newWSServer(t *testing.T, serve func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		serve(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type envelopeRecorder struct {
	mu   sync.Mutex
	envs []*model.Envelope
}

func (r *envelopeRecorder) handle(ctx context.Context, env *model.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func (r *envelopeRecorder) types() []types.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.EventType, 0, len(r.envs))
	for _, env := range r.envs {
		out = append(out, env.Type)
	}
	return out
}

func TestMalformedFrameDoesNotStopDelivery(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		gt.NoError(t, ws.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"WELCOME","data":{"sessionId":"s1"}}`)))
		gt.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
		gt.NoError(t, ws.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"MESSAGE_RECEIVED","data":{"id":"m1","channelId":"c1","content":"hi"}}`)))
		time.Sleep(time.Second)
	})

	rec := &envelopeRecorder{}
	conn := gt.R1(gateway.New(url, rec.handle)).NoError(t)
	defer conn.Close()

	gt.NoError(t, conn.Start(context.Background()))

	waitFor(t, func() bool { return len(rec.types()) == 2 })
	gt.Equal(t, rec.types(), []types.EventType{types.EventWelcome, types.EventMessageReceived})
}

func TestIdentifySentOnConnect(t *testing.T) {
	got := make(chan *model.Envelope, 1)
	url := newWSServer(t, func(ws *websocket.Conn) {
		var env model.Envelope
		if err := ws.ReadJSON(&env); err == nil {
			got <- &env
		}
		time.Sleep(time.Second)
	})

	conn := gt.R1(gateway.New(url,
		func(ctx context.Context, env *model.Envelope) {},
		gateway.WithBotID("bot-1"),
	)).NoError(t)
	defer conn.Close()

	gt.NoError(t, conn.Start(context.Background()))

	select {
	case env := <-got:
		gt.Equal(t, env.Type, types.EventIdentify)
		var payload model.IdentifyPayload
		gt.NoError(t, env.Decode(&payload))
		gt.Equal(t, payload.BotID, types.UserID("bot-1"))
	case <-time.After(2 * time.Second):
		t.Fatal("IDENTIFY not received")
	}
}

func TestStartIsIdempotentWhileOpen(t *testing.T) {
	var dials atomic.Int64
	url := newWSServer(t, func(ws *websocket.Conn) {
		dials.Add(1)
		time.Sleep(time.Second)
	})

	conn := gt.R1(gateway.New(url,
		func(ctx context.Context, env *model.Envelope) {},
	)).NoError(t)
	defer conn.Close()

	ctx := context.Background()
	gt.NoError(t, conn.Start(ctx))
	waitFor(t, conn.Connected)

	gt.NoError(t, conn.Start(ctx))
	gt.NoError(t, conn.Start(ctx))
	time.Sleep(50 * time.Millisecond)

	gt.Equal(t, dials.Load(), int64(1))
}

func TestReconnectAfterAbnormalClose(t *testing.T) {
	var dials atomic.Int64
	url := newWSServer(t, func(ws *websocket.Conn) {
		n := dials.Add(1)
		if n == 1 {
			// drop the connection without a close frame
			_ = ws.Close()
			return
		}
		time.Sleep(time.Second)
	})

	var transitions []bool
	var mu sync.Mutex
	conn := gt.R1(gateway.New(url,
		func(ctx context.Context, env *model.Envelope) {},
		gateway.WithBackoff(10*time.Millisecond, 20*time.Millisecond),
		gateway.WithStatusHandler(func(ctx context.Context, connected bool) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, connected)
		}),
	)).NoError(t)
	defer conn.Close()

	gt.NoError(t, conn.Start(context.Background()))

	waitFor(t, func() bool { return dials.Load() >= 2 })
	waitFor(t, conn.Connected)

	mu.Lock()
	defer mu.Unlock()
	gt.Equal(t, transitions[:3], []bool{true, false, true})
}

func TestNormalCloseDoesNotReconnect(t *testing.T) {
	var dials atomic.Int64
	url := newWSServer(t, func(ws *websocket.Conn) {
		dials.Add(1)
		deadline := time.Now().Add(time.Second)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline)
	})

	conn := gt.R1(gateway.New(url,
		func(ctx context.Context, env *model.Envelope) {},
		gateway.WithBackoff(10*time.Millisecond, 20*time.Millisecond),
	)).NoError(t)

	gt.NoError(t, conn.Start(context.Background()))

	waitFor(t, func() bool { return dials.Load() == 1 && !conn.Connected() })
	time.Sleep(100 * time.Millisecond)
	gt.Equal(t, dials.Load(), int64(1))
}

func TestKeepAlivePing(t *testing.T) {
	pings := make(chan model.PingPayload, 8)
	url := newWSServer(t, func(ws *websocket.Conn) {
		for {
			var env model.Envelope
			if err := ws.ReadJSON(&env); err != nil {
				return
			}
			if env.Type == types.EventPing {
				var payload model.PingPayload
				if err := env.Decode(&payload); err == nil {
					pings <- payload
				}
			}
		}
	})

	conn := gt.R1(gateway.New(url,
		func(ctx context.Context, env *model.Envelope) {},
		gateway.WithPingInterval(15*time.Millisecond),
	)).NoError(t)
	defer conn.Close()

	gt.NoError(t, conn.Start(context.Background()))

	select {
	case payload := <-pings:
		gt.True(t, payload.Timestamp > 0)
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive PING not received")
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	conn := gt.R1(gateway.New("ws://127.0.0.1:1/gateway",
		func(ctx context.Context, env *model.Envelope) {},
	)).NoError(t)

	env := gt.R1(model.NewEnvelope(types.EventTyping, model.TypingPayload{UserID: "u1"})).NoError(t)
	gt.Error(t, conn.Send(context.Background(), env))
}

func TestHandlerPanicDoesNotKillReadLoop(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		gt.NoError(t, ws.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"WELCOME","data":{"sessionId":"s1"}}`)))
		gt.NoError(t, ws.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"MESSAGE_RECEIVED","data":{"id":"m1","channelId":"c1","content":"hi"}}`)))
		time.Sleep(time.Second)
	})

	rec := &envelopeRecorder{}
	conn := gt.R1(gateway.New(url, func(ctx context.Context, env *model.Envelope) {
		if env.Type == types.EventWelcome {
			panic("boom")
		}
		rec.handle(ctx, env)
	})).NoError(t)
	defer conn.Close()

	gt.NoError(t, conn.Start(context.Background()))

	waitFor(t, func() bool { return len(rec.types()) == 1 })
	gt.Equal(t, rec.types()[0], types.EventMessageReceived)
}
