package commands

import (
	"context"
	"fmt"

	"github.com/brightpath/assessflow/internal/pipelineconfig"
	"github.com/brightpath/assessflow/internal/store"
	"github.com/brightpath/assessflow/pkg/config"
	"github.com/brightpath/assessflow/pkg/database"
	"github.com/brightpath/assessflow/pkg/logger"
)

// setup loads env config, the logger and the run policy. The --policy flag
// wins over PIPELINE_POLICY; with neither, built-in defaults apply.
func setup() (*config.Config, *logger.Logger, *pipelineconfig.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := policyFile
	if path == "" {
		path = cfg.PolicyPath
	}

	policy := pipelineconfig.Default()
	if path != "" {
		policy, err = pipelineconfig.Load(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load policy: %w", err)
		}
	}

	return cfg, log, policy, nil
}

// openStore connects the Postgres table store. The returned closer releases
// the pool.
func openStore(ctx context.Context, cfg *config.Config) (*store.Postgres, func(), error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := store.NewPostgres(db.Pool)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db.Close, nil
}
