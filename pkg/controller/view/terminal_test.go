package view_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cottonlesergal/ucontrol/pkg/controller/view"
	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

func newTestTerminal() (*view.Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return view.NewTerminal(&buf, view.WithoutColor()), &buf
}

func guildSnapshot() interfaces.ViewSnapshot {
	return interfaces.ViewSnapshot{
		Selection: model.Selection{
			Mode:      types.ViewModeGuild,
			GuildID:   "g1",
			ChannelID: "c1",
		},
		Guilds: []model.Guild{
			{ID: "g1", Name: "Home"},
			{ID: "g2", Name: "Away"},
		},
		Channels: []model.Channel{
			{ID: "cat1", GuildID: "g1", Name: "info", Type: types.ChannelTypeCategory, Position: 0},
			{ID: "c1", GuildID: "g1", Name: "general", Type: types.ChannelTypeText, ParentID: "cat1", Position: 0},
			{ID: "c2", GuildID: "g1", Name: "loose", Type: types.ChannelTypeText, Position: 1},
		},
	}
}

func TestRenderGuildsMarksSelection(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderGuilds(guildSnapshot())

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "> Home")).True()
	gt.Bool(t, strings.Contains(out, "> Away")).False()
	gt.Bool(t, strings.Contains(out, "Direct Messages")).True()
}

func TestRenderChannelsGroupsByCategory(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderChannels(guildSnapshot())

	out := buf.String()
	// Uncategorized channels come first, then category headers.
	gt.Number(t, strings.Index(out, "# loose")).Less(strings.Index(out, "INFO"))
	gt.Bool(t, strings.Contains(out, "# general  <")).True()
}

func TestRenderIsIdempotent(t *testing.T) {
	term, buf := newTestTerminal()
	snap := guildSnapshot()

	term.RenderChannels(snap)
	first := buf.String()
	buf.Reset()
	term.RenderChannels(snap)

	gt.Value(t, buf.String()).Equal(first)
}

func TestRenderMembersGroupsByStatus(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderMembers(interfaces.ViewSnapshot{
		Members: []model.User{
			{ID: "u1", Username: "zoe", Status: types.PresenceOnline},
			{ID: "u2", Username: "adam", Status: types.PresenceOnline},
			{ID: "u3", Username: "mia", Status: types.PresenceOffline},
		},
	})

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "ONLINE - 2")).True()
	gt.Bool(t, strings.Contains(out, "OFFLINE - 1")).True()
	// Name-sorted within a group.
	gt.Number(t, strings.Index(out, "adam")).Less(strings.Index(out, "zoe"))
}

func TestRenderMessagesMarkers(t *testing.T) {
	term, buf := newTestTerminal()

	author := &model.User{ID: "u1", Username: "alice"}
	term.RenderMessages(interfaces.ViewSnapshot{
		Messages: []model.Message{
			{ID: "m1", ChannelID: "c1", Author: author, Content: "hello", Timestamp: 1000},
			{ID: "m2", ChannelID: "c1", Author: author, Content: "fixed", Timestamp: 2000, Edited: true},
			{ID: "m3", ChannelID: "c1", Author: author, Content: "sending", Timestamp: 3000, Pending: true},
			{ID: "m4", ChannelID: "c1", Author: author, Content: "lost", Timestamp: 4000, Failed: true},
		},
		AtBottom: true,
	})

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "fixed (edited)")).True()
	gt.Bool(t, strings.Contains(out, "sending (sending...)")).True()
	gt.Bool(t, strings.Contains(out, "lost (failed to send)")).True()
	// Continuation messages do not repeat the author line.
	gt.Number(t, strings.Count(out, "alice")).Equal(1)
}

func TestRenderMessagesTypingIndicator(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderMessages(interfaces.ViewSnapshot{
		Members:  []model.User{{ID: "u1", Username: "alice"}},
		TypingBy: "u1",
	})

	gt.Bool(t, strings.Contains(buf.String(), "alice is typing...")).True()
}

func TestRenderMessagesSystemLine(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderMessages(interfaces.ViewSnapshot{
		Messages: []model.Message{
			{ID: "s1", ChannelID: "c1", Content: "alice joined the server", Timestamp: 1000, System: true},
		},
	})

	gt.Bool(t, strings.Contains(buf.String(), "-- alice joined the server --")).True()
}

func TestRenderDMListBadges(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderDMList(interfaces.ViewSnapshot{
		Selection: model.Selection{Mode: types.ViewModeDM, DMUserID: "u1"},
		DMUsers: []model.User{
			{ID: "o1", Username: "boss", Owner: true, Status: types.PresenceOnline},
			{ID: "u1", Username: "alice", Status: types.PresenceIdle},
			{ID: "b1", Username: "helper", Bot: true},
		},
	})

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "boss [OWNER]")).True()
	gt.Bool(t, strings.Contains(out, "helper [BOT]")).True()
	gt.Bool(t, strings.Contains(out, "alice  <")).True()
}

func TestConnectionStatusAndNotices(t *testing.T) {
	term, buf := newTestTerminal()

	term.RenderConnectionStatus(interfaces.ViewSnapshot{Connected: true})
	gt.Bool(t, strings.Contains(buf.String(), "[connected]")).True()

	buf.Reset()
	term.RenderConnectionStatus(interfaces.ViewSnapshot{Connected: false})
	gt.Bool(t, strings.Contains(buf.String(), "[disconnected")).True()

	buf.Reset()
	term.Notice(interfaces.NoticeError, "Failed to load members")
	gt.Bool(t, strings.Contains(buf.String(), "[!] Failed to load members")).True()
}
