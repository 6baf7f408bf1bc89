package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// Terminal renders state snapshots as plain text regions. Every render call
// rewrites its whole region from the snapshot, so repeated calls with the
// same state produce the same output.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer

	selected    *color.Color
	muted       *color.Color
	heading     *color.Color
	errColor    *color.Color
	statusColor map[types.PresenceStatus]*color.Color
}

var _ interfaces.Renderer = &Terminal{}

type Option func(*Terminal)

// WithoutColor disables ANSI sequences regardless of terminal detection.
func WithoutColor() Option {
	return func(t *Terminal) {
		for _, c := range []*color.Color{t.selected, t.muted, t.heading, t.errColor} {
			c.DisableColor()
		}
		for _, c := range t.statusColor {
			c.DisableColor()
		}
	}
}

func NewTerminal(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		w:        w,
		selected: color.New(color.FgCyan, color.Bold),
		muted:    color.New(color.Faint),
		heading:  color.New(color.Bold),
		errColor: color.New(color.FgRed),
		statusColor: map[types.PresenceStatus]*color.Color{
			types.PresenceOnline:  color.New(color.FgGreen),
			types.PresenceIdle:    color.New(color.FgYellow),
			types.PresenceDND:     color.New(color.FgRed),
			types.PresenceOffline: color.New(color.Faint),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) region(name string, body func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.heading.Fprintf(t.w, "== %s ==\n", name)
	body()
	fmt.Fprintln(t.w)
}

func (t *Terminal) RenderGuilds(snap interfaces.ViewSnapshot) {
	t.region("Servers", func() {
		fmt.Fprintln(t.w, "  [@] Direct Messages")
		for _, g := range snap.Guilds {
			marker := "   "
			if snap.Selection.IsGuildView() && g.ID == snap.Selection.GuildID {
				marker = " > "
				t.selected.Fprintf(t.w, "%s%s\n", marker, g.Name)
				continue
			}
			fmt.Fprintf(t.w, "%s%s\n", marker, g.Name)
		}
	})
}

func (t *Terminal) RenderChannels(snap interfaces.ViewSnapshot) {
	t.region("Channels", func() {
		for _, grp := range model.GroupChannels(snap.Channels) {
			if grp.Category != nil {
				t.muted.Fprintf(t.w, " %s\n", strings.ToUpper(grp.Category.Name))
			}
			for _, ch := range grp.Channels {
				prefix := channelPrefix(ch.Type)
				line := fmt.Sprintf("  %s%s", prefix, ch.Name)
				if snap.Selection.IsGuildView() && ch.ID == snap.Selection.ChannelID {
					t.selected.Fprintf(t.w, "%s  <\n", line)
					continue
				}
				fmt.Fprintln(t.w, line)
			}
		}
	})
}

func channelPrefix(kind types.ChannelType) string {
	switch kind {
	case types.ChannelTypeText:
		return "# "
	case types.ChannelTypeVoice:
		return "< "
	case types.ChannelTypeForum:
		return "= "
	case types.ChannelTypeNews:
		return "! "
	default:
		return "? "
	}
}

func (t *Terminal) RenderDMList(snap interfaces.ViewSnapshot) {
	t.region("Direct Messages", func() {
		for _, u := range snap.DMUsers {
			dot := t.statusDot(u.Status)
			badges := ""
			if u.Bot {
				badges += " [BOT]"
			}
			if u.Owner {
				badges += " [OWNER]"
			}
			line := fmt.Sprintf("  %s %s%s", dot, u.Name(), badges)
			if snap.Selection.IsDMView() && u.ID == snap.Selection.DMUserID {
				t.selected.Fprintf(t.w, "%s  <\n", line)
				continue
			}
			fmt.Fprintln(t.w, line)
		}
	})
}

func (t *Terminal) RenderMembers(snap interfaces.ViewSnapshot) {
	t.region("Members", func() {
		for _, status := range types.AllPresenceStatuses() {
			group := membersWithStatus(snap.Members, status)
			if len(group) == 0 {
				continue
			}
			t.muted.Fprintf(t.w, " %s - %d\n", strings.ToUpper(status.String()), len(group))
			for _, m := range group {
				badges := ""
				if m.Bot {
					badges = " [BOT]"
				}
				fmt.Fprintf(t.w, "  %s %s%s\n", t.statusDot(m.Status), m.Name(), badges)
			}
		}
	})
}

func membersWithStatus(members []model.User, status types.PresenceStatus) []model.User {
	var group []model.User
	for _, m := range members {
		if m.Status == status {
			group = append(group, m)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Name() < group[j].Name()
	})
	return group
}

func (t *Terminal) RenderMessages(snap interfaces.ViewSnapshot) {
	t.region("Messages", func() {
		var lastAuthor types.UserID
		for _, m := range snap.Messages {
			if m.System {
				t.muted.Fprintf(t.w, "  -- %s --\n", m.Content)
				lastAuthor = ""
				continue
			}

			if m.AuthorID() == "" || m.AuthorID() != lastAuthor {
				name := "unknown"
				if m.Author != nil {
					name = m.Author.Name()
				}
				ts := time.UnixMilli(m.Timestamp).Format("15:04")
				t.heading.Fprintf(t.w, " %s", name)
				t.muted.Fprintf(t.w, "  %s\n", ts)
			}
			lastAuthor = m.AuthorID()

			suffix := ""
			if m.Edited {
				suffix += " (edited)"
			}
			if m.Pending {
				suffix += " (sending...)"
			}
			if m.Failed {
				suffix = " (failed to send)"
			}
			if m.Failed {
				t.errColor.Fprintf(t.w, "  %s%s\n", m.Content, suffix)
			} else {
				fmt.Fprintf(t.w, "  %s%s\n", m.Content, suffix)
			}

			for _, a := range m.Attachments {
				t.muted.Fprintf(t.w, "  [attachment: %s]\n", a.Filename)
			}
			for _, e := range m.Embeds {
				title := e.Title
				if title == "" {
					title = e.URL
				}
				t.muted.Fprintf(t.w, "  [embed: %s]\n", title)
			}
		}

		if snap.TypingBy != "" {
			t.muted.Fprintf(t.w, " %s is typing...\n", userName(snap, snap.TypingBy))
		}
		if !snap.AtBottom {
			t.muted.Fprintln(t.w, " (older messages loaded)")
		}
	})
}

func userName(snap interfaces.ViewSnapshot, userID types.UserID) string {
	for _, m := range snap.Members {
		if m.ID == userID {
			return m.Name()
		}
	}
	for _, u := range snap.DMUsers {
		if u.ID == userID {
			return u.Name()
		}
	}
	return "someone"
}

func (t *Terminal) RenderConnectionStatus(snap interfaces.ViewSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Connected {
		t.statusColor[types.PresenceOnline].Fprintln(t.w, "[connected]")
		return
	}
	t.errColor.Fprintln(t.w, "[disconnected - reconnecting]")
}

func (t *Terminal) Notice(level interfaces.NoticeLevel, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level == interfaces.NoticeError {
		t.errColor.Fprintf(t.w, "[!] %s\n", message)
		return
	}
	t.muted.Fprintf(t.w, "[i] %s\n", message)
}

func (t *Terminal) statusDot(status types.PresenceStatus) string {
	c, ok := t.statusColor[status]
	if !ok {
		c = t.statusColor[types.PresenceOffline]
	}
	return c.Sprint("*")
}
