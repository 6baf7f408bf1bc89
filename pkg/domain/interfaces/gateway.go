package interfaces

import (
	"context"

	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
)

// EnvelopeHandler is the single ingestion entry point for push envelopes.
// All consumers subscribe through it; nothing intercepts the connection
// primitive directly.
type EnvelopeHandler func(ctx context.Context, env *model.Envelope)

// StatusHandler receives connection state transitions.
type StatusHandler func(ctx context.Context, connected bool)

// Gateway is the push side of the transport adapter: one long-lived
// connection delivering discrete typed envelopes.
type Gateway interface {
	// Start dials the gateway and begins delivering envelopes. Calling Start
	// while a connection is open or being established is a no-op.
	Start(ctx context.Context) error

	// Send marshals and writes an outbound envelope.
	Send(ctx context.Context, env *model.Envelope) error

	// Close shuts the connection down normally and suppresses reconnection.
	Close() error

	// Connected reports whether a connection is currently open.
	Connected() bool
}
