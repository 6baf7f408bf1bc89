package usecase

import (
	"time"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// DefaultTypingExpiry is how long a typing indicator stays alive without a
// fresh signal.
const DefaultTypingExpiry = 10 * time.Second

type UseCases struct {
	apiClient interfaces.APIClient
	gateway   interfaces.Gateway
	shadow    interfaces.ShadowRepository
	renderer  interfaces.Renderer

	state  *State
	typing *typingIndicator

	typingExpiry      time.Duration
	presenceOverrides map[types.UserID]types.PresenceStatus
}

type Option func(*UseCases)

// WithShadow attaches a persistence shadow. The client is fully functional
// without one; all shadow writes are best-effort.
func WithShadow(shadow interfaces.ShadowRepository) Option {
	return func(uc *UseCases) {
		uc.shadow = shadow
	}
}

func WithRenderer(renderer interfaces.Renderer) Option {
	return func(uc *UseCases) {
		uc.renderer = renderer
	}
}

// WithPresenceOverrides pins the displayed status of specific users,
// regardless of what the backend reports.
func WithPresenceOverrides(overrides map[types.UserID]types.PresenceStatus) Option {
	return func(uc *UseCases) {
		uc.presenceOverrides = overrides
	}
}

func WithTypingExpiry(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.typingExpiry = d
	}
}

func New(apiClient interfaces.APIClient, opts ...Option) *UseCases {
	uc := &UseCases{
		apiClient:    apiClient,
		renderer:     &noopRenderer{},
		state:        NewState(),
		typing:       newTypingIndicator(),
		typingExpiry: DefaultTypingExpiry,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// AttachGateway binds the push channel. It is set after construction because
// the gateway itself is built around HandleEnvelope.
func (uc *UseCases) AttachGateway(gw interfaces.Gateway) {
	uc.gateway = gw
}

// State exposes the store for snapshot reads.
func (uc *UseCases) State() *State {
	return uc.state
}

// noopRenderer is the default sink when no presentation layer is attached.
type noopRenderer struct{}

var _ interfaces.Renderer = &noopRenderer{}

func (r *noopRenderer) RenderGuilds(interfaces.ViewSnapshot)           {}
func (r *noopRenderer) RenderChannels(interfaces.ViewSnapshot)         {}
func (r *noopRenderer) RenderDMList(interfaces.ViewSnapshot)           {}
func (r *noopRenderer) RenderMembers(interfaces.ViewSnapshot)          {}
func (r *noopRenderer) RenderMessages(interfaces.ViewSnapshot)         {}
func (r *noopRenderer) RenderConnectionStatus(interfaces.ViewSnapshot) {}
func (r *noopRenderer) Notice(interfaces.NoticeLevel, string)          {}
