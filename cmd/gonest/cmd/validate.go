package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gonest/internal/config"
	"github.com/dbsmedya/gonest/internal/database"
	"github.com/dbsmedya/gonest/internal/logger"
)

var validateConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and optionally the database connection",
	Long: `Validate checks the configuration file and every job's nesting options.

Checks performed:
  - Configuration syntax and required fields
  - Column names used as keys are plain identifiers
  - Relationship names are unique and prefixes are not shadowed
  - Database settings and connectivity (with --connect)

Example:
  gonest validate --config gonest.yaml --connect`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateConnect, "connect", false,
		"Also validate the database section and ping the database")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Jobs found: %d\n\n", len(cfg.Jobs))

	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	hasErrors := false
	for _, jobName := range cfg.ListJobs() {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return err
		}
		cmd.Printf("--- Job: %s ---\n", jobName)
		cmd.Printf("Root primary key: %s\n", job.RootPrimaryKey)
		cmd.Printf("Relationships: %d\n", len(job.Relationships))

		if err := jobOptions(job).Validate(); err != nil {
			cmd.Printf("❌ Nesting options invalid: %v\n\n", err)
			hasErrors = true
			continue
		}
		cmd.Printf("✅ Nesting options valid\n\n")
	}

	if validateConnect {
		cmd.Printf("--- Database: %s ---\n", cfg.Database.Driver)
		if err := checkDatabase(cmd, cfg); err != nil {
			cmd.Printf("❌ %v\n\n", err)
			hasErrors = true
		} else {
			cmd.Printf("✅ Connection OK\n\n")
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more checks")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ All jobs validated successfully")
	return nil
}

func checkDatabase(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := commandContext(cmd)
	dbManager := database.NewManager(&cfg.Database, log)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("%s connection failed: %w", cfg.Database.Driver, err)
	}
	return nil
}
