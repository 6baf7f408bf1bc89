package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/usecase"
)

func TestInitializeStartsInDMView(t *testing.T) {
	api := &fakeAPI{
		listGuilds: func(ctx context.Context) ([]model.Guild, error) {
			return []model.Guild{{ID: "g1", Name: "Home"}}, nil
		},
		listDMUsers: func(ctx context.Context) ([]model.User, error) {
			return []model.User{{ID: "u1", Username: "alice", Status: types.PresenceOnline}}, nil
		},
	}
	uc, _, _ := newTestUseCases(t, api)

	gt.NoError(t, uc.Initialize(context.Background())).Required()

	gt.Bool(t, uc.State().Selection().IsDMView()).True()
	gt.Array(t, uc.State().Guilds()).Length(1)
	gt.Array(t, uc.State().DMUsers()).Length(1)
	bot := uc.State().BotUser()
	gt.Value(t, bot).NotNil()
	gt.Value(t, bot.ID).Equal(types.UserID("bot-1"))
}

func TestSelectGuildAutoSelectsFirstTextChannel(t *testing.T) {
	api := &fakeAPI{
		listGuildChannels: func(ctx context.Context, guildID types.GuildID) ([]model.Channel, error) {
			return []model.Channel{
				{ID: "v1", GuildID: guildID, Name: "voice", Type: types.ChannelTypeVoice, Position: 0},
				{ID: "c1", GuildID: guildID, Name: "general", Type: types.ChannelTypeText, Position: 1},
			}, nil
		},
		listGuildMembers: func(ctx context.Context, guildID types.GuildID) ([]model.User, error) {
			return []model.User{{ID: "u1", Username: "alice"}}, nil
		},
		listMessages: func(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
			return []model.Message{{ID: "m1", ChannelID: channelID, Content: "hi", Timestamp: 100}}, nil
		},
	}
	uc, gw, _ := newTestUseCases(t, api)

	gt.NoError(t, uc.SelectGuild(context.Background(), "g1")).Required()

	sel := uc.State().Selection()
	gt.Bool(t, sel.IsGuildView()).True()
	gt.Value(t, sel.GuildID).Equal(types.GuildID("g1"))
	gt.Value(t, sel.ChannelID).Equal(types.ChannelID("c1"))
	gt.Array(t, uc.State().Messages()).Length(1)
	gt.Array(t, uc.State().Members()).Length(1)

	sent := gw.sentTypes()
	gt.Array(t, sent).Length(1)
	gt.Value(t, sent[0]).Equal(types.EventSubscribeChannel)
}

func TestSelectDMUserWithBotFlagIsRejected(t *testing.T) {
	uc, gw, renderer := newTestUseCases(t, nil)
	ctx := context.Background()

	uc.State().SetDMUsers([]model.User{
		{ID: "u1", Username: "alice"},
		{ID: "b1", Username: "helper", Bot: true},
	})
	uc.State().SetMessages([]model.Message{
		{ID: "m1", ChannelID: "dm-u1", Content: "existing", Timestamp: 100},
	})
	before := uc.State().Selection()

	gt.NoError(t, uc.SelectDMUser(ctx, "b1")).Required()

	sel := uc.State().Selection()
	// The highlight moves, nothing else does.
	gt.Value(t, sel.DMUserID).Equal(types.UserID("b1"))
	gt.Value(t, sel.Mode).Equal(before.Mode)
	gt.Value(t, sel.ChannelID).Equal(before.ChannelID)
	gt.Array(t, uc.State().Messages()).Length(1)
	gt.Number(t, renderer.noticeCount()).Equal(1)
	gt.Array(t, gw.sentTypes()).Length(0)
}

func TestSelectDMUserOpensConversation(t *testing.T) {
	api := &fakeAPI{
		listMessages: func(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
			return []model.Message{{ID: "m1", ChannelID: channelID, Content: "hey", Timestamp: 100}}, nil
		},
	}
	uc, gw, _ := newTestUseCases(t, api)
	ctx := context.Background()

	uc.State().SetDMUsers([]model.User{{ID: "u1", Username: "alice"}})

	gt.NoError(t, uc.SelectDMUser(ctx, "u1")).Required()

	sel := uc.State().Selection()
	gt.Bool(t, sel.IsDMView()).True()
	gt.Value(t, sel.DMUserID).Equal(types.UserID("u1"))
	gt.Value(t, uc.State().DMChannel()).Equal(types.ChannelID("dm-u1"))
	gt.Array(t, uc.State().Messages()).Length(1)

	sent := gw.sentTypes()
	gt.Array(t, sent).Length(1)
	gt.Value(t, sent[0]).Equal(types.EventSubscribeDM)
}

func TestSwitchToDMViewMergesOwnerAtHead(t *testing.T) {
	api := &fakeAPI{
		listDMUsers: func(ctx context.Context) ([]model.User, error) {
			return []model.User{
				{ID: "u1", Username: "alice", Status: types.PresenceIdle},
				{ID: "owner-1", Username: "boss", Status: types.PresenceOffline},
			}, nil
		},
		getBotOwner: func(ctx context.Context) (*model.User, error) {
			return &model.User{ID: "owner-1", Username: "boss"}, nil
		},
	}
	uc, _, _ := newTestUseCases(t, api)

	gt.NoError(t, uc.SwitchToDMView(context.Background())).Required()

	users := uc.State().DMUsers()
	gt.Array(t, users).Length(2)
	gt.Value(t, users[0].ID).Equal(types.UserID("owner-1"))
	gt.Bool(t, users[0].Owner).True()
	// The owner is always shown online.
	gt.Value(t, users[0].Status).Equal(types.PresenceOnline)
	gt.Value(t, users[1].ID).Equal(types.UserID("u1"))
}

func TestSwitchToDMViewAppliesPresenceOverrides(t *testing.T) {
	api := &fakeAPI{
		listDMUsers: func(ctx context.Context) ([]model.User, error) {
			return []model.User{{ID: "u1", Username: "alice", Status: types.PresenceOnline}}, nil
		},
	}
	uc, _, _ := newTestUseCases(t, api, usecase.WithPresenceOverrides(
		map[types.UserID]types.PresenceStatus{"u1": types.PresenceIdle},
	))

	gt.NoError(t, uc.SwitchToDMView(context.Background())).Required()

	gt.Value(t, uc.State().DMUsers()[0].Status).Equal(types.PresenceIdle)
}

func TestSwitchToDMViewFetchFailureLeavesNotice(t *testing.T) {
	api := &fakeAPI{
		listDMUsers: func(ctx context.Context) ([]model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	uc, _, renderer := newTestUseCases(t, api)

	gt.Error(t, uc.SwitchToDMView(context.Background()))
	gt.Number(t, renderer.noticeCount()).Equal(1)
}

func TestSendMessageOptimisticConfirmation(t *testing.T) {
	var pendingSeen bool
	api := &fakeAPI{}
	uc, _, _ := newTestUseCases(t, api)
	ctx := context.Background()
	selectTextChannel(t, uc, "g1", "c1")

	api.postMessage = func(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error) {
		// The pending entry must already be visible while the POST is in
		// flight.
		for _, m := range uc.State().Messages() {
			if m.Pending && m.ID.IsPending() && m.Content == content {
				pendingSeen = true
			}
		}
		return &model.Message{ID: "m-real", ChannelID: channelID, Content: content, Timestamp: 500}, nil
	}

	gt.NoError(t, uc.SendMessage(ctx, "hello there")).Required()

	gt.Bool(t, pendingSeen).True()
	messages := uc.State().Messages()
	gt.Array(t, messages).Length(1)
	gt.Value(t, messages[0].ID).Equal(types.MessageID("m-real"))
	gt.Bool(t, messages[0].Pending).False()
}

func TestSendMessageFailureMarksEntryFailed(t *testing.T) {
	api := &fakeAPI{
		postMessage: func(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error) {
			return nil, errors.New("boom")
		},
	}
	uc, _, renderer := newTestUseCases(t, api)
	ctx := context.Background()
	selectTextChannel(t, uc, "g1", "c1")

	gt.Error(t, uc.SendMessage(ctx, "doomed"))

	messages := uc.State().Messages()
	gt.Array(t, messages).Length(1)
	gt.Bool(t, messages[0].Failed).True()
	gt.Bool(t, messages[0].Pending).False()
	gt.Value(t, messages[0].Content).Equal("doomed")
	gt.Number(t, renderer.noticeCount()).Equal(1)
}

func TestSendMessageWithoutSelectionIsNoop(t *testing.T) {
	uc, _, renderer := newTestUseCases(t, nil)

	gt.NoError(t, uc.SendMessage(context.Background(), "to nowhere"))

	gt.Array(t, uc.State().Messages()).Length(0)
	gt.Number(t, renderer.noticeCount()).Equal(1)
}

func TestLoadOlderMessagesPrepends(t *testing.T) {
	api := &fakeAPI{
		listMessages: func(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
			gt.Value(t, query.Before).Equal(types.MessageID("m3"))
			return []model.Message{
				{ID: "m1", ChannelID: channelID, Content: "oldest", Timestamp: 100},
				{ID: "m2", ChannelID: channelID, Content: "older", Timestamp: 200},
			}, nil
		},
	}
	uc, _, _ := newTestUseCases(t, api)
	ctx := context.Background()
	selectTextChannel(t, uc, "g1", "c1")
	uc.State().SetMessages([]model.Message{
		{ID: "m3", ChannelID: "c1", Content: "current", Timestamp: 300},
	})

	gt.NoError(t, uc.LoadOlderMessages(ctx)).Required()

	messages := uc.State().Messages()
	gt.Array(t, messages).Length(3)
	gt.Value(t, messages[0].ID).Equal(types.MessageID("m1"))
	gt.Value(t, messages[2].ID).Equal(types.MessageID("m3"))
	gt.Bool(t, uc.State().AtBottom()).False()
}

func TestStaleFetchResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		listMessages: func(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
			if channelID == "c-slow" {
				<-release
				return []model.Message{{ID: "stale", ChannelID: channelID, Content: "stale", Timestamp: 1}}, nil
			}
			return []model.Message{{ID: "fresh", ChannelID: channelID, Content: "fresh", Timestamp: 2}}, nil
		},
	}
	uc, _, _ := newTestUseCases(t, api)
	ctx := context.Background()
	uc.State().SetSelection(model.Selection{Mode: types.ViewModeGuild, GuildID: "g1"})

	done := make(chan error, 1)
	go func() {
		done <- uc.SelectChannel(ctx, "c-slow")
	}()

	// The user switches channels before the first fetch completes.
	for uc.State().Selection().ChannelID != "c-slow" {
		time.Sleep(time.Millisecond)
	}
	gt.NoError(t, uc.SelectChannel(ctx, "c-fast")).Required()
	close(release)
	gt.NoError(t, <-done)

	messages := uc.State().Messages()
	gt.Array(t, messages).Length(1)
	gt.Value(t, messages[0].ID).Equal(types.MessageID("fresh"))
}

func TestSendTypingTargetsCurrentScope(t *testing.T) {
	uc, gw, _ := newTestUseCases(t, nil)
	ctx := context.Background()
	uc.State().SetBotUser(&model.User{ID: "bot-1", Username: "ucontrol", Bot: true})
	selectTextChannel(t, uc, "g1", "c1")

	gt.NoError(t, uc.SendTyping(ctx)).Required()

	sent := gw.sentTypes()
	gt.Array(t, sent).Length(1)
	gt.Value(t, sent[0]).Equal(types.EventTyping)

	var payload model.TypingPayload
	gt.NoError(t, gw.sent[0].Decode(&payload))
	gt.Value(t, payload.ChannelID).Equal(types.ChannelID("c1"))
	gt.Value(t, payload.UserID).Equal(types.UserID("bot-1"))
}

func TestPendingMessageIDsAreRecognizable(t *testing.T) {
	id := types.NewPendingMessageID()
	gt.Bool(t, id.IsPending()).True()
	gt.Bool(t, strings.HasPrefix(string(id), "pending-")).True()
	gt.Bool(t, types.MessageID("m1").IsPending()).False()
}
