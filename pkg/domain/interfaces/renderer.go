package interfaces

import (
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// NoticeLevel classifies transient user-facing notices.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// ViewSnapshot is the read-only state a render pass consumes.
type ViewSnapshot struct {
	Selection model.Selection
	BotUser   *model.User
	Guilds    []model.Guild
	Channels  []model.Channel
	Members   []model.User
	DMUsers   []model.User
	Messages  []model.Message
	Connected bool
	AtBottom  bool
	TypingBy  types.UserID
}

// Renderer produces derived output from state snapshots. It holds no
// authoritative state. Every method must be idempotent and fully replace
// the region it owns.
type Renderer interface {
	RenderGuilds(snap ViewSnapshot)
	RenderChannels(snap ViewSnapshot)
	RenderDMList(snap ViewSnapshot)
	RenderMembers(snap ViewSnapshot)
	RenderMessages(snap ViewSnapshot)
	RenderConnectionStatus(snap ViewSnapshot)
	Notice(level NoticeLevel, message string)
}
