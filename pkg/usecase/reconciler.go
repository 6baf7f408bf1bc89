package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/utils/async"
	"github.com/cottonlesergal/ucontrol/pkg/utils/errutil"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
)

// HandleEnvelope is the single ingestion point for push envelopes. Every
// event is handled inside a recover guard so one malformed payload cannot
// halt processing of subsequent events.
func (uc *UseCases) HandleEnvelope(ctx context.Context, env *model.Envelope) {
	if env == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic while handling event",
				"event_type", env.Type, "recover", r)
		}
	}()

	logger := logging.From(ctx)

	var err error
	switch env.Type {
	case types.EventWelcome:
		err = uc.handleWelcome(ctx, env)
	case types.EventAck:
		var payload model.AckPayload
		if err = env.Decode(&payload); err == nil {
			logger.Debug("action acknowledged", "action", payload.Action, "id", payload.ID)
		}
	case types.EventPong:
		logger.Debug("pong received")
	case types.EventMessageReceived:
		err = uc.handleMessageReceived(ctx, env)
	case types.EventMessageUpdate:
		err = uc.handleMessageUpdate(ctx, env)
	case types.EventMessageDelete:
		err = uc.handleMessageDelete(ctx, env)
	case types.EventUserUpdate:
		err = uc.handleUserUpdate(ctx, env)
	case types.EventUserStatus:
		err = uc.handleStatusUpdate(ctx, env)
	case types.EventPresenceUpdate:
		err = uc.handlePresenceUpdate(ctx, env)
	case types.EventTypingStart:
		err = uc.handleTypingStart(ctx, env)
	case types.EventMemberJoin:
		err = uc.handleMember(ctx, env, true)
	case types.EventMemberLeave:
		err = uc.handleMember(ctx, env, false)
	case types.EventChannelCreate, types.EventChannelUpdate:
		err = uc.handleChannelUpsert(ctx, env)
	case types.EventChannelDelete:
		err = uc.handleChannelDelete(ctx, env)
	case types.EventGuildUpdate:
		err = uc.handleGuildUpdate(ctx, env)
	case types.EventVoiceState:
		err = uc.handleVoiceState(ctx, env)
	case types.EventRefreshDMList:
		err = uc.handleRefreshDMList(ctx)
	case types.EventIdentify, types.EventSubscribeChannel, types.EventSubscribeDM,
		types.EventTyping, types.EventPing:
		// Outbound-only types; a server must not echo them back.
		logger.Warn("outbound event type received from server", "event_type", env.Type)
	default:
		logger.Warn("unknown event type ignored", "event_type", env.Type)
	}

	if err != nil {
		if errors.Is(err, types.ErrNotFoundLocal) {
			// Benign: the event targeted an entity outside the loaded state.
			logger.Debug("event ignored", "event_type", env.Type, "reason", err.Error())
			return
		}
		_ = errutil.Handle(ctx, err, "failed to handle event")
	}
}

// HandleConnectionStatus reflects gateway transitions in the status line.
// Disconnection is not an error, just visible state.
func (uc *UseCases) HandleConnectionStatus(ctx context.Context, connected bool) {
	uc.state.SetConnected(connected)
	uc.renderer.RenderConnectionStatus(uc.state.Snapshot())
}

func (uc *UseCases) handleWelcome(ctx context.Context, env *model.Envelope) error {
	var payload model.WelcomePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	logging.From(ctx).Info("gateway session established", "session_id", payload.SessionID)

	// A fresh session knows nothing about the previous scope.
	return uc.subscribeCurrentScope(ctx)
}

func (uc *UseCases) handleMessageReceived(ctx context.Context, env *model.Envelope) error {
	var msg model.Message
	if err := env.Decode(&msg); err != nil {
		return err
	}

	// Irrelevant events still feed the shadow.
	uc.mirrorMessage(ctx, &msg)

	if !uc.state.Selection().MessageRelevant(msg) {
		return nil
	}

	// Receiving a message ends its author's typing indicator.
	if uc.state.TypingBy() != "" && uc.state.TypingBy() == msg.AuthorID() {
		uc.typing.Stop()
		uc.state.SetTypingBy("")
	}

	uc.state.UpsertMessage(msg)
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleMessageUpdate(ctx context.Context, env *model.Envelope) error {
	var msg model.Message
	if err := env.Decode(&msg); err != nil {
		return err
	}

	msg.Edited = true
	if msg.EditedAt == 0 {
		msg.EditedAt = time.Now().UnixMilli()
	}

	uc.mirrorMessage(ctx, &msg)

	if !uc.state.Selection().MessageRelevant(msg) {
		return nil
	}

	if !uc.state.MergeMessage(msg) {
		// Never loaded, most likely outside the current window.
		return goerr.Wrap(types.ErrNotFoundLocal, "update for unloaded message",
			goerr.V(types.MessageKey, msg.ID))
	}

	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleMessageDelete(ctx context.Context, env *model.Envelope) error {
	var payload model.MessageDeletePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	if !uc.state.RemoveMessage(payload.ID) {
		return goerr.Wrap(types.ErrNotFoundLocal, "delete for unloaded message",
			goerr.V(types.MessageKey, payload.ID))
	}
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleUserUpdate(ctx context.Context, env *model.Envelope) error {
	var user model.User
	if err := env.Decode(&user); err != nil {
		return err
	}

	if !uc.state.MergeUser(user) {
		return goerr.Wrap(types.ErrNotFoundLocal, "update for unknown user",
			goerr.V(types.UserKey, user.ID))
	}

	snap := uc.state.Snapshot()
	uc.renderer.RenderMembers(snap)
	uc.renderer.RenderDMList(snap)
	return nil
}

func (uc *UseCases) handleStatusUpdate(ctx context.Context, env *model.Envelope) error {
	var payload model.StatusUpdatePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	uc.applyStatus(ctx, payload.UserID, payload.NewStatus)
	return nil
}

func (uc *UseCases) handlePresenceUpdate(ctx context.Context, env *model.Envelope) error {
	var payload model.PresencePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	uc.applyStatus(ctx, payload.UserID, payload.Status)
	return nil
}

// applyStatus fans a single status change out to every collection holding
// the user. Unrecognized values normalize to offline; pinned users keep
// their override.
func (uc *UseCases) applyStatus(ctx context.Context, userID types.UserID, raw string) {
	status := types.ParsePresenceStatus(raw)
	if override, ok := uc.presenceOverrides[userID]; ok {
		status = override
	}

	if uc.shadow != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.shadow.User().PatchStatus(ctx, userID, status)
		})
	}

	if !uc.state.SetUserStatus(userID, status) {
		return
	}

	snap := uc.state.Snapshot()
	uc.renderer.RenderMembers(snap)
	uc.renderer.RenderDMList(snap)
}

func (uc *UseCases) handleTypingStart(ctx context.Context, env *model.Envelope) error {
	var payload model.TypingPayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	if !uc.state.Selection().TypingRelevant(payload.ChannelID, payload.UserID) {
		return nil
	}

	uc.state.SetTypingBy(payload.UserID)
	uc.typing.Reset(uc.typingExpiry, func() {
		uc.state.SetTypingBy("")
		uc.renderer.RenderMessages(uc.state.Snapshot())
	})
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleMember(ctx context.Context, env *model.Envelope, joined bool) error {
	var payload model.MemberPayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	sel := uc.state.Selection()
	if !sel.IsGuildView() || payload.GuildID != sel.GuildID {
		return nil
	}

	member := payload.User
	if member == nil {
		member = &model.User{ID: payload.UserID, Username: payload.Username}
	}
	if member.ID == "" {
		return goerr.Wrap(types.ErrParse, "member event without user id",
			goerr.V(types.GuildKey, payload.GuildID))
	}

	if joined {
		uc.state.UpsertMember(*member)
	} else {
		uc.state.RemoveMember(member.ID)
	}
	uc.renderer.RenderMembers(uc.state.Snapshot())

	// The guild's system channel gets a synthetic join/leave line when it is
	// the one on screen.
	if payload.SystemChannelID != "" && payload.SystemChannelID == sel.ChannelID {
		verb := "joined"
		if !joined {
			verb = "left"
		}
		uc.state.UpsertMessage(model.Message{
			ID:        types.MessageID("system-" + uuid.NewString()),
			ChannelID: payload.SystemChannelID,
			Content:   member.Name() + " " + verb + " the server",
			Timestamp: time.Now().UnixMilli(),
			System:    true,
		})
		uc.renderer.RenderMessages(uc.state.Snapshot())
	}
	return nil
}

func (uc *UseCases) handleChannelUpsert(ctx context.Context, env *model.Envelope) error {
	var channel model.Channel
	if err := env.Decode(&channel); err != nil {
		return err
	}
	channel.Type = types.ParseChannelType(string(channel.Type))

	sel := uc.state.Selection()
	if !sel.IsGuildView() || channel.GuildID != sel.GuildID {
		return nil
	}

	uc.state.UpsertChannel(channel)
	uc.renderer.RenderChannels(uc.state.Snapshot())

	if uc.shadow != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.shadow.Channel().Save(ctx, &channel)
		})
	}
	return nil
}

func (uc *UseCases) handleChannelDelete(ctx context.Context, env *model.Envelope) error {
	var payload model.ChannelDeletePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	sel := uc.state.Selection()
	if payload.GuildID != "" && (!sel.IsGuildView() || payload.GuildID != sel.GuildID) {
		return nil
	}

	uc.state.RemoveChannel(payload.ID)
	uc.renderer.RenderChannels(uc.state.Snapshot())

	if payload.ID != sel.ChannelID {
		return nil
	}

	// The open channel is gone: fall back to the first remaining text
	// channel, or clear the message view entirely.
	if fallback := uc.state.FirstTextChannel(); fallback != nil {
		return uc.SelectChannel(ctx, fallback.ID)
	}

	sel.ChannelID = ""
	uc.state.SetSelection(sel)
	uc.state.ClearMessages()
	snap := uc.state.Snapshot()
	uc.renderer.RenderChannels(snap)
	uc.renderer.RenderMessages(snap)
	return nil
}

func (uc *UseCases) handleGuildUpdate(ctx context.Context, env *model.Envelope) error {
	var left model.GuildLeavePayload
	if err := env.Decode(&left); err != nil {
		return err
	}

	if left.Left {
		// Removal does not auto-deselect a selected guild; the user
		// navigates away on their own.
		uc.state.RemoveGuild(left.ID)
		uc.renderer.RenderGuilds(uc.state.Snapshot())
		return nil
	}

	var guild model.Guild
	if err := env.Decode(&guild); err != nil {
		return err
	}
	uc.state.UpsertGuild(guild)
	uc.renderer.RenderGuilds(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleVoiceState(ctx context.Context, env *model.Envelope) error {
	var payload model.VoiceStatePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	sel := uc.state.Selection()
	if !sel.IsGuildView() || payload.GuildID != sel.GuildID {
		return nil
	}
	uc.renderer.RenderChannels(uc.state.Snapshot())
	return nil
}

func (uc *UseCases) handleRefreshDMList(ctx context.Context) error {
	users, err := uc.fetchDMUsers(ctx)
	if err != nil {
		return err
	}
	uc.state.SetDMUsers(users)
	uc.renderer.RenderDMList(uc.state.Snapshot())
	return nil
}

// mirrorMessage persists a message to the shadow, best-effort.
func (uc *UseCases) mirrorMessage(ctx context.Context, msg *model.Message) {
	if uc.shadow == nil {
		return
	}
	m := *msg
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.shadow.Message().Save(ctx, &m)
	})
}

// subscribeCurrentScope tells the gateway which conversation to deliver.
func (uc *UseCases) subscribeCurrentScope(ctx context.Context) error {
	if uc.gateway == nil {
		return nil
	}

	sel := uc.state.Selection()
	switch {
	case sel.IsGuildView() && sel.ChannelID != "":
		env, err := model.NewEnvelope(types.EventSubscribeChannel,
			model.SubscribeChannelPayload{ChannelID: sel.ChannelID})
		if err != nil {
			return err
		}
		return uc.gateway.Send(ctx, env)
	case sel.IsDMView() && sel.DMUserID != "":
		env, err := model.NewEnvelope(types.EventSubscribeDM,
			model.SubscribeDMPayload{UserID: sel.DMUserID})
		if err != nil {
			return err
		}
		return uc.gateway.Send(ctx, env)
	}
	return nil
}
