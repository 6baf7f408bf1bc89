package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/service/gateway"
)

// Gateway holds CLI flags for the push channel
type Gateway struct {
	url          string
	pingInterval time.Duration
}

// Flags returns CLI flags for gateway configuration
func (g *Gateway) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gateway-url",
			Usage:       "WebSocket URL of the backend gateway",
			Sources:     cli.EnvVars("UCONTROL_GATEWAY_URL"),
			Destination: &g.url,
		},
		&cli.DurationFlag{
			Name:        "gateway-ping-interval",
			Usage:       "Keep-alive interval for the gateway connection",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("UCONTROL_GATEWAY_PING_INTERVAL"),
			Destination: &g.pingInterval,
		},
	}
}

// Configure builds the gateway connection around the single envelope
// ingestion point.
func (g *Gateway) Configure(handler interfaces.EnvelopeHandler, status interfaces.StatusHandler, botID types.UserID) (*gateway.Conn, error) {
	if g.url == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "gateway-url is required")
	}

	return gateway.New(g.url, handler,
		gateway.WithPingInterval(g.pingInterval),
		gateway.WithStatusHandler(status),
		gateway.WithBotID(botID),
	)
}

func (g Gateway) String() string {
	return g.url
}
