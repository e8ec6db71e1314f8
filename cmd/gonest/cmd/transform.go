package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gonest/internal/denorm"
	"github.com/dbsmedya/gonest/internal/render"
	"github.com/dbsmedya/gonest/internal/types"
)

var (
	transformJob   string
	transformInput string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Nest flat rows read from a file or stdin",
	Long: `Transform reads a JSON or YAML array of flat rows, nests them with the
job's relationships and writes the result in the configured format.

Rows must be grouped by the job's root primary key, as an ORDER BY on that
key produces. The job's query is not used.

Example:
  gonest transform --config gonest.yaml --job users --input rows.json
  mysql -e '...' | gonest transform --job users --format yaml`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVarP(&transformJob, "job", "j", "",
		"Job name from configuration file (required)")
	transformCmd.Flags().StringVarP(&transformInput, "input", "i", "-",
		"JSON or YAML file with flat rows, - for stdin")
	transformCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadValidConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	job, err := cfg.GetJob(transformJob)
	if err != nil {
		return err
	}
	jobLog := log.WithJob(transformJob)

	rows, err := readInput(cmd, transformInput)
	if err != nil {
		return err
	}

	t, err := denorm.NewTransformer(jobOptions(job), jobLog)
	if err != nil {
		return fmt.Errorf("job %q: %w", transformJob, err)
	}
	nested, stats, err := t.Transform(rows)
	if err != nil {
		return fmt.Errorf("job %q: %w", transformJob, err)
	}
	jobLog.Infow("Transform complete",
		"input_rows", stats.InputRows,
		"root_rows", stats.RootRows,
		"duration", stats.Duration,
	)

	out := cfg.ApplyJobOverrides(transformJob, GetCLIOverrides().OutputFormat)
	return render.Write(cmd.OutOrStdout(), nested, out.Format, out.Pretty)
}

func readInput(cmd *cobra.Command, path string) ([]*types.Row, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := render.ReadRows(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", displayPath(path), err)
	}
	return rows, nil
}

func displayPath(path string) string {
	if path == "-" || path == "" {
		return "stdin"
	}
	return path
}
