package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/repository/firestore"
	"github.com/cottonlesergal/ucontrol/pkg/repository/memory"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
)

// Shadow holds CLI flags for the persistence shadow backend
type Shadow struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for shadow configuration
func (s *Shadow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "shadow-backend",
			Usage:       "Persistence shadow backend (firestore, memory or none)",
			Value:       "none",
			Sources:     cli.EnvVars("UCONTROL_SHADOW_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("UCONTROL_FIRESTORE_PROJECT_ID"),
			Destination: &s.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("UCONTROL_FIRESTORE_DATABASE_ID"),
			Destination: &s.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Sources:     cli.EnvVars("UCONTROL_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &s.collectionPrefix,
		},
	}
}

// Configure initializes the shadow repository. A nil repository means the
// shadow is disabled; the client runs without it.
// The caller is responsible for calling Close() on a non-nil repository.
func (s *Shadow) Configure(ctx context.Context) (interfaces.ShadowRepository, error) {
	switch s.backend {
	case "firestore":
		if s.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig,
				"firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if s.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(s.collectionPrefix))
		}
		repo, err := firestore.New(ctx, s.projectID, s.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore shadow")
		}
		logging.Default().Info("Using Firestore shadow",
			"project_id", s.projectID,
			"database_id", s.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory shadow (development mode)")
		return memory.New(), nil

	case "none", "":
		logging.Default().Info("Persistence shadow disabled")
		return nil, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown shadow backend",
			goerr.V("backend", s.backend))
	}
}
