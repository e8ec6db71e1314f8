package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/gonest/internal/config"
	"github.com/dbsmedya/gonest/internal/database"
	"github.com/dbsmedya/gonest/internal/denorm"
	"github.com/dbsmedya/gonest/internal/logger"
	"github.com/dbsmedya/gonest/internal/render"
	"github.com/dbsmedya/gonest/internal/types"
)

var (
	queryJob string
	queryAll bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a job's query and nest the result",
	Long: `Query runs the SQL of one job (or of every job with --all) against the
configured database, nests the rows and writes them in the configured format.

With --all, jobs run concurrently, at most processing.workers at a time, and
the output is an object keyed by job name. The first failing job cancels the
others.

Example:
  gonest query --config gonest.yaml --job users
  gonest query --config gonest.yaml --all --workers 2 --format yaml`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryJob, "job", "j", "",
		"Job name from configuration file")
	queryCmd.Flags().BoolVar(&queryAll, "all", false,
		"Run every job defined in the configuration file")
	queryCmd.MarkFlagsMutuallyExclusive("job", "all")
	queryCmd.MarkFlagsOneRequired("job", "all")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadValidConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	jobNames := []string{queryJob}
	if queryAll {
		jobNames = cfg.ListJobs()
	} else if _, err := cfg.GetJob(queryJob); err != nil {
		return err
	}

	ctx, stop := database.SignalContext(commandContext(cmd), func(sig os.Signal) {
		log.Warnf("Received %s, canceling queries", sig)
	})
	defer stop()

	dbManager := database.NewManager(&cfg.Database, log)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()

	results := make([][]*types.Row, len(jobNames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Processing.Workers)
	for i, jobName := range jobNames {
		i, jobName := i, jobName
		g.Go(func() error {
			nested, err := runJob(gctx, dbManager.DB, cfg, jobName, log)
			if err != nil {
				return err
			}
			results[i] = nested
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !queryAll {
		out := cfg.ApplyJobOverrides(queryJob, GetCLIOverrides().OutputFormat)
		return render.Write(w, results[0], out.Format, out.Pretty)
	}

	byJob := types.NewRow()
	for i, jobName := range jobNames {
		byJob.Set(jobName, results[i])
	}
	return render.Write(w, byJob, cfg.Output.Format, cfg.Output.Pretty)
}

// runJob fetches one job's rows and nests them.
func runJob(ctx context.Context, q database.Querier, cfg *config.Config, jobName string, log *logger.Logger) ([]*types.Row, error) {
	job, err := cfg.GetJob(jobName)
	if err != nil {
		return nil, err
	}
	if job.Query == "" {
		return nil, fmt.Errorf("job %q has no query", jobName)
	}
	jobLog := log.WithJob(jobName)

	jobLog.Debugf("Running query")
	rows, err := database.Fetch(ctx, q, job.Query, job.Args...)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jobName, err)
	}

	t, err := denorm.NewTransformer(jobOptions(job), jobLog)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jobName, err)
	}
	nested, stats, err := t.Transform(rows)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", jobName, err)
	}

	jobLog.Infow("Job complete",
		"input_rows", stats.InputRows,
		"root_rows", stats.RootRows,
		"skipped_null_keys", stats.SkippedNullKeys,
		"duration", stats.Duration,
	)
	return nested, nil
}
