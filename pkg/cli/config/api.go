package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/service/api"
)

// API holds CLI flags for the REST transport
type API struct {
	baseURL  string
	token    string
	cacheTTL time.Duration
}

// Flags returns CLI flags for API configuration
func (a *API) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "Base URL of the backend REST API",
			Sources:     cli.EnvVars("UCONTROL_API_URL"),
			Destination: &a.baseURL,
		},
		&cli.StringFlag{
			Name:        "api-token",
			Usage:       "Bot token for API authentication",
			Sources:     cli.EnvVars("UCONTROL_API_TOKEN"),
			Destination: &a.token,
		},
		&cli.DurationFlag{
			Name:        "api-cache-ttl",
			Usage:       "TTL of the response cache",
			Value:       api.DefaultCacheTTL,
			Sources:     cli.EnvVars("UCONTROL_API_CACHE_TTL"),
			Destination: &a.cacheTTL,
		},
	}
}

// Configure builds the API client.
func (a *API) Configure() (*api.Client, error) {
	if a.baseURL == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "api-url is required")
	}

	opts := []api.Option{api.WithCacheTTL(a.cacheTTL)}
	if a.token != "" {
		opts = append(opts, api.WithToken(a.token))
	}
	return api.New(a.baseURL, opts...)
}

func (a API) String() string {
	return a.baseURL
}
