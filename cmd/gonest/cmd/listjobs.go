package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gonest/internal/config"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all nesting jobs defined in the configuration file
along with their relationships and output settings.

Example:
  gonest list-jobs --config gonest.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jobNames := cfg.ListJobs()

	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}

		// Job header
		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Root Key:      %s\n", job.RootPrimaryKey)

		if query := firstLine(job.Query); query != "" {
			cmd.Printf("   Query:         %s\n", query)
		} else {
			cmd.Printf("   Query:         (none, transform only)\n")
		}

		cmd.Printf("   Relationships: %d\n", len(job.Relationships))
		for _, rel := range job.Relationships {
			cmd.Printf("      - %s (prefix: %s, PK: %s, ref: %s)\n",
				rel.Name, rel.Prefix, rel.PrimaryKey, rel.ReferenceColumn)
		}

		if job.KeepNullInstances {
			cmd.Printf("   Null Keys:     kept\n")
		}

		// Job-specific output config
		if job.Output != nil {
			out := job.GetJobOutput(cfg.Output)
			cmd.Printf("   Output:        Custom (format=%s, pretty=%v)\n", out.Format, out.Pretty)
		}

		// Add spacing between jobs
		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}

// firstLine returns the first non-blank line of s, marked when more follow.
func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	first := strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		first += " ..."
	}
	return first
}
