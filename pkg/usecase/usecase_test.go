package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/usecase"
)

// fakeAPI is a canned APIClient. Any unset function field returns empty data.
type fakeAPI struct {
	getBotUser        func(ctx context.Context) (*model.User, error)
	getBotOwner       func(ctx context.Context) (*model.User, error)
	listGuilds        func(ctx context.Context) ([]model.Guild, error)
	getGuild          func(ctx context.Context, guildID types.GuildID) (*model.Guild, error)
	listGuildChannels func(ctx context.Context, guildID types.GuildID) ([]model.Channel, error)
	listGuildMembers  func(ctx context.Context, guildID types.GuildID) ([]model.User, error)
	listDMUsers       func(ctx context.Context) ([]model.User, error)
	getUser           func(ctx context.Context, userID types.UserID) (*model.User, error)
	openDMChannel     func(ctx context.Context, userID types.UserID) (*model.Channel, error)
	updateUserStatus  func(ctx context.Context, userID types.UserID, status types.PresenceStatus) error
	listMessages      func(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error)
	postMessage       func(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error)
}

var _ interfaces.APIClient = &fakeAPI{}

func (f *fakeAPI) GetBotUser(ctx context.Context) (*model.User, error) {
	if f.getBotUser != nil {
		return f.getBotUser(ctx)
	}
	return &model.User{ID: "bot-1", Username: "ucontrol", Bot: true}, nil
}

func (f *fakeAPI) GetBotOwner(ctx context.Context) (*model.User, error) {
	if f.getBotOwner != nil {
		return f.getBotOwner(ctx)
	}
	return &model.User{}, nil
}

func (f *fakeAPI) ListGuilds(ctx context.Context) ([]model.Guild, error) {
	if f.listGuilds != nil {
		return f.listGuilds(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) GetGuild(ctx context.Context, guildID types.GuildID) (*model.Guild, error) {
	if f.getGuild != nil {
		return f.getGuild(ctx, guildID)
	}
	return &model.Guild{ID: guildID}, nil
}

func (f *fakeAPI) ListGuildChannels(ctx context.Context, guildID types.GuildID) ([]model.Channel, error) {
	if f.listGuildChannels != nil {
		return f.listGuildChannels(ctx, guildID)
	}
	return nil, nil
}

func (f *fakeAPI) ListGuildMembers(ctx context.Context, guildID types.GuildID) ([]model.User, error) {
	if f.listGuildMembers != nil {
		return f.listGuildMembers(ctx, guildID)
	}
	return nil, nil
}

func (f *fakeAPI) ListDMUsers(ctx context.Context) ([]model.User, error) {
	if f.listDMUsers != nil {
		return f.listDMUsers(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) GetUser(ctx context.Context, userID types.UserID) (*model.User, error) {
	if f.getUser != nil {
		return f.getUser(ctx, userID)
	}
	return &model.User{ID: userID}, nil
}

func (f *fakeAPI) OpenDMChannel(ctx context.Context, userID types.UserID) (*model.Channel, error) {
	if f.openDMChannel != nil {
		return f.openDMChannel(ctx, userID)
	}
	return &model.Channel{ID: types.ChannelID("dm-" + string(userID)), Type: types.ChannelTypeText}, nil
}

func (f *fakeAPI) UpdateUserStatus(ctx context.Context, userID types.UserID, status types.PresenceStatus) error {
	if f.updateUserStatus != nil {
		return f.updateUserStatus(ctx, userID, status)
	}
	return nil
}

func (f *fakeAPI) ListMessages(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
	if f.listMessages != nil {
		return f.listMessages(ctx, channelID, query)
	}
	return nil, nil
}

func (f *fakeAPI) PostMessage(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error) {
	if f.postMessage != nil {
		return f.postMessage(ctx, channelID, content)
	}
	return &model.Message{ID: "confirmed-1", ChannelID: channelID, Content: content, Timestamp: 1}, nil
}

// fakeGateway records outbound envelopes.
type fakeGateway struct {
	mu        sync.Mutex
	sent      []*model.Envelope
	connected bool
}

var _ interfaces.Gateway = &fakeGateway{}

func (f *fakeGateway) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeGateway) Send(ctx context.Context, env *model.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeGateway) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeGateway) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeGateway) sentTypes() []types.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.EventType, len(f.sent))
	for i, env := range f.sent {
		out[i] = env.Type
	}
	return out
}

// recordRenderer counts render calls and captures notices.
type recordRenderer struct {
	mu      sync.Mutex
	renders map[string]int
	notices []string
}

var _ interfaces.Renderer = &recordRenderer{}

func newRecordRenderer() *recordRenderer {
	return &recordRenderer{renders: make(map[string]int)}
}

func (r *recordRenderer) record(region string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders[region]++
}

func (r *recordRenderer) RenderGuilds(interfaces.ViewSnapshot)           { r.record("guilds") }
func (r *recordRenderer) RenderChannels(interfaces.ViewSnapshot)         { r.record("channels") }
func (r *recordRenderer) RenderDMList(interfaces.ViewSnapshot)           { r.record("dmlist") }
func (r *recordRenderer) RenderMembers(interfaces.ViewSnapshot)          { r.record("members") }
func (r *recordRenderer) RenderMessages(interfaces.ViewSnapshot)         { r.record("messages") }
func (r *recordRenderer) RenderConnectionStatus(interfaces.ViewSnapshot) { r.record("status") }

func (r *recordRenderer) Notice(level interfaces.NoticeLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, string(level)+": "+message)
}

func (r *recordRenderer) noticeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func newTestUseCases(t *testing.T, api interfaces.APIClient, opts ...usecase.Option) (*usecase.UseCases, *fakeGateway, *recordRenderer) {
	t.Helper()

	if api == nil {
		api = &fakeAPI{}
	}
	renderer := newRecordRenderer()
	uc := usecase.New(api, append([]usecase.Option{usecase.WithRenderer(renderer)}, opts...)...)
	gw := &fakeGateway{}
	uc.AttachGateway(gw)
	return uc, gw, renderer
}

func mustEnvelope(t *testing.T, eventType types.EventType, payload any) *model.Envelope {
	t.Helper()

	env, err := model.NewEnvelope(eventType, payload)
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	return env
}
