package usecase

import (
	"sync"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// State is the single authoritative store of everything the client shows:
// the current selection, the denormalized entity collections and the
// connection flag. All mutation goes through named operations; whole
// collections are only replaced on a full refetch, never on an incremental
// event. Logically there is a single writer (the reconciler), but the store
// is mutex-guarded so snapshot reads are safe from any goroutine.
type State struct {
	mu sync.RWMutex

	selection model.Selection
	botUser   *model.User
	guilds    []model.Guild
	channels  []model.Channel
	members   []model.User
	dmUsers   []model.User
	messages  []model.Message

	// dmChannel is the backing channel of the open DM conversation. It is
	// not part of Selection: in DM view the selected DM user is what is
	// meaningful, the channel is plumbing for fetches and sends.
	dmChannel types.ChannelID

	connected bool
	atBottom  bool
	typingBy  types.UserID

	// epoch tags in-flight fetches with the selection context active when
	// they were issued. A fetch result is discarded when the epoch moved on.
	epoch uint64
}

func NewState() *State {
	return &State{
		selection: model.NewSelection(),
		atBottom:  true,
	}
}

// Epoch returns the current fetch epoch.
func (s *State) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// BumpEpoch invalidates all in-flight fetches and returns the new epoch.
func (s *State) BumpEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	return s.epoch
}

// EpochValid reports whether a fetch issued at the given epoch may still
// apply its result.
func (s *State) EpochValid(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch == epoch
}

func (s *State) Selection() model.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *State) SetSelection(sel model.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

func (s *State) BotUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.botUser == nil {
		return nil
	}
	u := *s.botUser
	return &u
}

func (s *State) SetBotUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.botUser = nil
		return
	}
	u := *user
	s.botUser = &u
}

func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *State) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

func (s *State) AtBottom() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atBottom
}

func (s *State) SetAtBottom(atBottom bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atBottom = atBottom
}

// Snapshot returns a deep-enough copy of everything a render pass consumes.
func (s *State) Snapshot() interfaces.ViewSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := interfaces.ViewSnapshot{
		Selection: s.selection,
		Guilds:    append([]model.Guild(nil), s.guilds...),
		Channels:  append([]model.Channel(nil), s.channels...),
		Members:   append([]model.User(nil), s.members...),
		DMUsers:   append([]model.User(nil), s.dmUsers...),
		Messages:  append([]model.Message(nil), s.messages...),
		Connected: s.connected,
		AtBottom:  s.atBottom,
		TypingBy:  s.typingBy,
	}
	if s.botUser != nil {
		u := *s.botUser
		snap.BotUser = &u
	}
	return snap
}

func (s *State) DMChannel() types.ChannelID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dmChannel
}

func (s *State) SetDMChannel(channelID types.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dmChannel = channelID
}

// --- guilds ---

func (s *State) Guilds() []model.Guild {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Guild(nil), s.guilds...)
}

func (s *State) SetGuilds(guilds []model.Guild) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds = append([]model.Guild(nil), guilds...)
}

func (s *State) UpsertGuild(guild model.Guild) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.guilds {
		if g.ID == guild.ID {
			s.guilds[i] = g.Merge(guild)
			return
		}
	}
	s.guilds = append(s.guilds, guild)
}

func (s *State) RemoveGuild(guildID types.GuildID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.guilds {
		if g.ID == guildID {
			s.guilds = append(s.guilds[:i], s.guilds[i+1:]...)
			return true
		}
	}
	return false
}

// --- channels ---

func (s *State) Channels() []model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Channel(nil), s.channels...)
}

func (s *State) SetChannels(channels []model.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append([]model.Channel(nil), channels...)
}

func (s *State) UpsertChannel(channel model.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.channels {
		if c.ID == channel.ID {
			s.channels[i] = c.Merge(channel)
			return
		}
	}
	s.channels = append(s.channels, channel)
}

func (s *State) RemoveChannel(channelID types.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.channels {
		if c.ID == channelID {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			return true
		}
	}
	return false
}

// FirstTextChannel returns the first remaining text channel, or nil.
func (s *State) FirstTextChannel() *model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FirstTextChannel(s.channels)
}

// --- members / DM users ---

func (s *State) Members() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.members...)
}

func (s *State) SetMembers(members []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]model.User(nil), members...)
}

func (s *State) UpsertMember(member model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.members {
		if m.ID == member.ID {
			s.members[i] = m.Merge(member)
			return
		}
	}
	s.members = append(s.members, member)
}

func (s *State) RemoveMember(userID types.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.members {
		if m.ID == userID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) DMUsers() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.dmUsers...)
}

func (s *State) SetDMUsers(users []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dmUsers = append([]model.User(nil), users...)
}

// DMUser returns the DM list entry for userID, or nil.
func (s *State) DMUser(userID types.UserID) *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.dmUsers {
		if u.ID == userID {
			uc := u
			return &uc
		}
	}
	return nil
}

// MergeUser shallow-merges the user into every collection containing that
// id. The member list and the DM list are independent copies; the user may
// be in zero, one, or both. Reports whether anything changed.
func (s *State) MergeUser(user model.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i, m := range s.members {
		if m.ID == user.ID {
			s.members[i] = m.Merge(user)
			changed = true
		}
	}
	for i, u := range s.dmUsers {
		if u.ID == user.ID {
			s.dmUsers[i] = u.Merge(user)
			changed = true
		}
	}
	return changed
}

// SetUserStatus is the same fan-out as MergeUser but touches exactly one
// field. Reports whether any collection held the user.
func (s *State) SetUserStatus(userID types.UserID, status types.PresenceStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i, m := range s.members {
		if m.ID == userID {
			s.members[i].Status = status
			changed = true
		}
	}
	for i, u := range s.dmUsers {
		if u.ID == userID {
			s.dmUsers[i].Status = status
			changed = true
		}
	}
	return changed
}

// --- messages ---

func (s *State) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.messages...)
}

func (s *State) SetMessages(messages []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append([]model.Message(nil), messages...)
	model.SortMessages(s.messages)
}

func (s *State) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// UpsertMessage merges by id when present, appends otherwise, then
// re-sorts. Re-delivery of the same payload is idempotent.
func (s *State) UpsertMessage(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == msg.ID {
			s.messages[i] = m.Merge(msg)
			model.SortMessages(s.messages)
			return
		}
	}
	s.messages = append(s.messages, msg)
	model.SortMessages(s.messages)
}

// MergeMessage applies fields onto an existing message only. Reports false
// without mutating when the id was never loaded.
func (s *State) MergeMessage(msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == msg.ID {
			s.messages[i] = m.Merge(msg)
			model.SortMessages(s.messages)
			return true
		}
	}
	return false
}

// RemoveMessage removes by id; idempotent if already absent.
func (s *State) RemoveMessage(messageID types.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == messageID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// MarkMessageFailed flags an optimistic entry as failed instead of letting
// it silently disappear.
func (s *State) MarkMessageFailed(messageID types.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == messageID {
			s.messages[i].Pending = false
			s.messages[i].Failed = true
			return true
		}
	}
	return false
}

// PrependMessages adds an older window in front of the active list, skipping
// ids already present, then re-sorts.
func (s *State) PrependMessages(older []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[types.MessageID]struct{}, len(s.messages))
	for _, m := range s.messages {
		present[m.ID] = struct{}{}
	}

	merged := make([]model.Message, 0, len(older)+len(s.messages))
	for _, m := range older {
		if _, ok := present[m.ID]; ok {
			continue
		}
		merged = append(merged, m)
	}
	merged = append(merged, s.messages...)
	model.SortMessages(merged)
	s.messages = merged
}

// --- typing ---

func (s *State) TypingBy() types.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typingBy
}

func (s *State) SetTypingBy(userID types.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typingBy = userID
}
