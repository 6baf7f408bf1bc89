package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/utils/async"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
)

const olderMessagesPageSize = 50

// Initialize loads the bot identity and the guild rail, then lands on the
// DM home view.
func (uc *UseCases) Initialize(ctx context.Context) error {
	var botUser *model.User
	var guilds []model.Guild

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		u, err := uc.apiClient.GetBotUser(egCtx)
		if err != nil {
			return err
		}
		botUser = u
		return nil
	})
	eg.Go(func() error {
		g, err := uc.apiClient.ListGuilds(egCtx)
		if err != nil {
			return err
		}
		guilds = g
		return nil
	})
	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to initialize session")
	}

	uc.state.SetBotUser(botUser)
	uc.state.SetGuilds(guilds)
	uc.renderer.RenderGuilds(uc.state.Snapshot())

	if err := uc.SwitchToDMView(ctx); err != nil {
		// The rail is usable even when the DM fetch failed; the notice
		// from SwitchToDMView invites a retry.
		return err
	}
	return nil
}

// SelectGuild switches to the guild view, loads channels and members
// concurrently, and auto-selects the first text channel.
func (uc *UseCases) SelectGuild(ctx context.Context, guildID types.GuildID) error {
	uc.clearTyping()
	uc.state.SetSelection(model.Selection{
		Mode:    types.ViewModeGuild,
		GuildID: guildID,
	})
	epoch := uc.state.BumpEpoch()

	var channels []model.Channel
	var members []model.User

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c, err := uc.apiClient.ListGuildChannels(egCtx, guildID)
		if err != nil {
			return err
		}
		channels = c
		return nil
	})
	eg.Go(func() error {
		m, err := uc.apiClient.ListGuildMembers(egCtx, guildID)
		if err != nil {
			return err
		}
		members = m
		return nil
	})
	if err := eg.Wait(); err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to load server")
		return goerr.Wrap(err, "failed to load guild", goerr.V(types.GuildKey, guildID))
	}

	// The user moved on while the fetch was in flight.
	if !uc.state.EpochValid(epoch) {
		logging.From(ctx).Debug("discarding stale guild fetch",
			"guild_id", guildID)
		return nil
	}

	for i := range members {
		if override, ok := uc.presenceOverrides[members[i].ID]; ok {
			members[i].Status = override
		}
	}

	uc.state.SetChannels(channels)
	uc.state.SetMembers(members)
	snap := uc.state.Snapshot()
	uc.renderer.RenderChannels(snap)
	uc.renderer.RenderMembers(snap)

	if first := model.FirstTextChannel(channels); first != nil {
		return uc.SelectChannel(ctx, first.ID)
	}

	uc.state.ClearMessages()
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

// SelectChannel opens a text channel in the current guild: fetch its
// messages, subscribe the push scope.
func (uc *UseCases) SelectChannel(ctx context.Context, channelID types.ChannelID) error {
	uc.clearTyping()
	sel := uc.state.Selection()
	sel.Mode = types.ViewModeGuild
	sel.ChannelID = channelID
	sel.DMUserID = ""
	uc.state.SetSelection(sel)
	epoch := uc.state.BumpEpoch()

	messages, err := uc.apiClient.ListMessages(ctx, channelID, interfaces.MessageQuery{})
	if err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to load messages")
		return goerr.Wrap(err, "failed to load messages", goerr.V(types.ChannelKey, channelID))
	}
	if !uc.state.EpochValid(epoch) {
		logging.From(ctx).Debug("discarding stale message fetch",
			"channel_id", channelID)
		return nil
	}

	uc.state.SetMessages(messages)
	uc.state.SetAtBottom(true)
	snap := uc.state.Snapshot()
	uc.renderer.RenderChannels(snap)
	uc.renderer.RenderMessages(snap)

	return uc.subscribeCurrentScope(ctx)
}

// SelectDMUser opens a direct conversation. Bots are not conversable: the
// selection highlight moves but the view mode, channel and message list stay
// untouched, and the user sees a rejection notice.
func (uc *UseCases) SelectDMUser(ctx context.Context, userID types.UserID) error {
	if target := uc.state.DMUser(userID); target != nil && target.Bot {
		sel := uc.state.Selection()
		sel.DMUserID = userID
		uc.state.SetSelection(sel)
		uc.renderer.RenderDMList(uc.state.Snapshot())
		uc.renderer.Notice(interfaces.NoticeInfo, "You can't send direct messages to a bot")
		return nil
	}

	uc.clearTyping()
	uc.state.SetSelection(model.Selection{
		Mode:     types.ViewModeDM,
		DMUserID: userID,
	})
	epoch := uc.state.BumpEpoch()

	dmChannel, err := uc.apiClient.OpenDMChannel(ctx, userID)
	if err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to open conversation")
		return goerr.Wrap(err, "failed to open DM channel", goerr.V(types.UserKey, userID))
	}

	messages, err := uc.apiClient.ListMessages(ctx, dmChannel.ID, interfaces.MessageQuery{})
	if err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to load messages")
		return goerr.Wrap(err, "failed to load DM messages",
			goerr.V(types.UserKey, userID), goerr.V(types.ChannelKey, dmChannel.ID))
	}
	if !uc.state.EpochValid(epoch) {
		logging.From(ctx).Debug("discarding stale DM fetch", "user_id", userID)
		return nil
	}

	uc.state.SetDMChannel(dmChannel.ID)
	uc.state.SetMessages(messages)
	uc.state.SetAtBottom(true)
	snap := uc.state.Snapshot()
	uc.renderer.RenderDMList(snap)
	uc.renderer.RenderMessages(snap)

	if uc.shadow != nil {
		record := &model.DMChannelRecord{ChannelID: dmChannel.ID, UserID: userID}
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.shadow.DM().Put(ctx, record)
		})
	}

	return uc.subscribeCurrentScope(ctx)
}

// SwitchToDMView leaves the guild surface and loads the DM home list.
func (uc *UseCases) SwitchToDMView(ctx context.Context) error {
	uc.clearTyping()
	uc.state.SetSelection(model.NewSelection())
	uc.state.SetDMChannel("")
	epoch := uc.state.BumpEpoch()

	users, err := uc.fetchDMUsers(ctx)
	if err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to load direct messages")
		return goerr.Wrap(err, "failed to load DM users")
	}
	if !uc.state.EpochValid(epoch) {
		logging.From(ctx).Debug("discarding stale DM list fetch")
		return nil
	}

	uc.state.SetDMUsers(users)
	uc.state.ClearMessages()
	snap := uc.state.Snapshot()
	uc.renderer.RenderDMList(snap)
	uc.renderer.RenderMessages(snap)
	return nil
}

// fetchDMUsers loads the DM-capable user list, merges the bot owner at its
// head forced online, and applies pinned presence overrides.
func (uc *UseCases) fetchDMUsers(ctx context.Context) ([]model.User, error) {
	users, err := uc.apiClient.ListDMUsers(ctx)
	if err != nil {
		return nil, err
	}

	// The owner fetch is best-effort enrichment; its absence is not fatal.
	if owner, err := uc.apiClient.GetBotOwner(ctx); err != nil {
		logging.From(ctx).Warn("failed to fetch bot owner", "error", err)
	} else if owner != nil && owner.ID != "" {
		owner.Owner = true
		owner.Status = types.PresenceOnline
		merged := []model.User{*owner}
		for _, u := range users {
			if u.ID == owner.ID {
				continue
			}
			merged = append(merged, u)
		}
		users = merged
	}

	for i := range users {
		if override, ok := uc.presenceOverrides[users[i].ID]; ok {
			users[i].Status = override
		}
	}
	return users, nil
}

// SendMessage posts to the open conversation with an optimistic pending
// entry. On failure the entry stays, marked failed, instead of vanishing.
func (uc *UseCases) SendMessage(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}

	channelID := uc.targetChannel()
	if channelID == "" {
		uc.renderer.Notice(interfaces.NoticeInfo, "No conversation selected")
		return nil
	}

	pending := model.Message{
		ID:        types.NewPendingMessageID(),
		ChannelID: channelID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Pending:   true,
	}
	if bot := uc.state.BotUser(); bot != nil {
		pending.Author = bot
	}

	uc.state.UpsertMessage(pending)
	uc.state.SetAtBottom(true)
	uc.renderer.RenderMessages(uc.state.Snapshot())

	confirmed, err := uc.apiClient.PostMessage(ctx, channelID, content)
	if err != nil {
		uc.state.MarkMessageFailed(pending.ID)
		uc.renderer.RenderMessages(uc.state.Snapshot())
		uc.renderer.Notice(interfaces.NoticeError, "Failed to send message")
		return goerr.Wrap(err, "failed to send message", goerr.V(types.ChannelKey, channelID))
	}

	// The confirmed entity replaces the optimistic one; no duplicate of the
	// same logical message stays visible.
	uc.state.RemoveMessage(pending.ID)
	if confirmed != nil {
		uc.state.UpsertMessage(*confirmed)
		uc.mirrorMessage(ctx, confirmed)
	}
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

// SendTyping signals the current conversation scope.
func (uc *UseCases) SendTyping(ctx context.Context) error {
	if uc.gateway == nil {
		return nil
	}

	channelID := uc.targetChannel()
	if channelID == "" {
		return nil
	}

	sel := uc.state.Selection()
	payload := model.TypingPayload{ChannelID: channelID, GuildID: sel.GuildID}
	if bot := uc.state.BotUser(); bot != nil {
		payload.UserID = bot.ID
	}
	env, err := model.NewEnvelope(types.EventTyping, payload)
	if err != nil {
		return err
	}
	return uc.gateway.Send(ctx, env)
}

// LoadOlderMessages extends the window backwards from the oldest loaded
// message.
func (uc *UseCases) LoadOlderMessages(ctx context.Context) error {
	channelID := uc.targetChannel()
	if channelID == "" {
		return nil
	}

	current := uc.state.Messages()
	if len(current) == 0 {
		return nil
	}
	epoch := uc.state.Epoch()

	older, err := uc.apiClient.ListMessages(ctx, channelID, interfaces.MessageQuery{
		Before: current[0].ID,
		Limit:  olderMessagesPageSize,
	})
	if err != nil {
		uc.renderer.Notice(interfaces.NoticeError, "Failed to load older messages")
		return goerr.Wrap(err, "failed to load older messages",
			goerr.V(types.ChannelKey, channelID))
	}
	if !uc.state.EpochValid(epoch) {
		logging.From(ctx).Debug("discarding stale pagination fetch",
			"channel_id", channelID)
		return nil
	}
	if len(older) == 0 {
		return nil
	}

	uc.state.PrependMessages(older)
	uc.state.SetAtBottom(false)
	uc.renderer.RenderMessages(uc.state.Snapshot())
	return nil
}

// targetChannel resolves where outbound traffic goes in the current view.
func (uc *UseCases) targetChannel() types.ChannelID {
	sel := uc.state.Selection()
	if sel.IsGuildView() {
		return sel.ChannelID
	}
	if sel.DMUserID == "" {
		return ""
	}
	return uc.state.DMChannel()
}

func (uc *UseCases) clearTyping() {
	uc.typing.Stop()
	uc.state.SetTypingBy("")
}
