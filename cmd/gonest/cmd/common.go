package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gonest/internal/config"
	"github.com/dbsmedya/gonest/internal/denorm"
	"github.com/dbsmedya/gonest/internal/logger"
)

// loadConfig reads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.OutputFormat, overrides.Workers)
	return cfg, nil
}

// loadValidConfig loads the config and rejects it unless it validates.
func loadValidConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// jobOptions converts a job's relationship config into nesting options.
func jobOptions(job *config.JobConfig) denorm.Options {
	opts := denorm.Options{
		RootPrimaryKey:    job.RootPrimaryKey,
		KeepNullInstances: job.KeepNullInstances,
		Relationships:     make([]denorm.RelationshipSpec, 0, len(job.Relationships)),
	}
	for _, rel := range job.Relationships {
		opts.Relationships = append(opts.Relationships, denorm.RelationshipSpec{
			Name:            rel.Name,
			Prefix:          rel.Prefix,
			PrimaryKey:      rel.PrimaryKey,
			ReferenceColumn: rel.ReferenceColumn,
		})
	}
	return opts
}

// commandContext returns the command's context, which is nil when a run
// function is called directly instead of through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
