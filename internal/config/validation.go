package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gonest/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks jobs, output, processing and logging settings.
// The database section is checked separately by ValidateDatabase since
// transforming rows from a file never connects.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if len(c.Jobs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Message: "at least one job must be defined",
		})
	}
	for _, name := range c.ListJobs() {
		job := c.Jobs[name]
		errors = append(errors, c.validateJob(name, &job)...)
	}

	errors = append(errors, validateOutput("output", &c.Output)...)
	errors = append(errors, c.validateProcessing()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateDatabase checks the database section.
func (c *Config) ValidateDatabase() error {
	errors := c.validateDatabase("database", &c.Database)
	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	switch db.Driver {
	case "mysql", "postgres":
		if db.Host == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".host",
				Message: "host is required",
			})
		}
		if db.User == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".user",
				Message: "user is required",
			})
		}
		if db.Database == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".database",
				Message: "database name is required",
			})
		}
	case "sqlite":
		if db.Path == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Message: "path is required for sqlite",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".driver",
			Message: "driver must be 'mysql', 'postgres', or 'sqlite'",
		})
	}

	if db.Port < 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	if job.RootPrimaryKey == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".root_primary_key",
			Message: "root_primary_key is required",
		})
	} else if err := sqlutil.CheckIdentifier(job.RootPrimaryKey); err != nil {
		errors = append(errors, ValidationError{
			Field:   prefix + ".root_primary_key",
			Message: err.Error(),
		})
	}

	seen := make(map[string]bool, len(job.Relationships))
	for i, rel := range job.Relationships {
		relPrefix := fmt.Sprintf("%s.relationships[%d]", prefix, i)
		if rel.Name != "" && seen[rel.Name] {
			errors = append(errors, ValidationError{
				Field:   relPrefix + ".name",
				Message: fmt.Sprintf("relationship %q is declared more than once", rel.Name),
			})
		}
		seen[rel.Name] = true
		errors = append(errors, validateRelationship(relPrefix, &rel)...)
	}

	// Later relationships whose prefix extends an earlier one can never match.
	for i, rel := range job.Relationships {
		for _, earlier := range job.Relationships[:i] {
			if earlier.Prefix != "" && rel.Prefix != "" && strings.HasPrefix(rel.Prefix, earlier.Prefix) {
				errors = append(errors, ValidationError{
					Field: fmt.Sprintf("%s.relationships[%d].prefix", prefix, i),
					Message: fmt.Sprintf("prefix %q is shadowed by earlier prefix %q; declare the longer prefix first",
						rel.Prefix, earlier.Prefix),
				})
			}
		}
	}

	if job.Output != nil {
		errors = append(errors, validateOutput(prefix+".output", job.Output)...)
	}

	return errors
}

func validateRelationship(prefix string, rel *RelationshipConfig) ValidationErrors {
	var errors ValidationErrors

	if rel.Name == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".name",
			Message: "name is required",
		})
	}

	if rel.Prefix == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".prefix",
			Message: "prefix is required",
		})
	}

	for _, col := range []struct{ field, value string }{
		{"primary_key", rel.PrimaryKey},
		{"reference_column", rel.ReferenceColumn},
	} {
		if col.value == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + "." + col.field,
				Message: col.field + " is required",
			})
			continue
		}
		if err := sqlutil.CheckIdentifier(col.value); err != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + "." + col.field,
				Message: err.Error(),
			})
		}
	}

	if rel.PrimaryKey != "" && rel.Prefix != "" && !strings.HasPrefix(rel.PrimaryKey, rel.Prefix) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".primary_key",
			Message: fmt.Sprintf("primary_key %q must start with prefix %q", rel.PrimaryKey, rel.Prefix),
		})
	}

	return errors
}

func validateOutput(prefix string, out *OutputConfig) ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"json": true, "yaml": true, "msgpack": true, "": true}
	if !validFormats[out.Format] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".format",
			Message: "format must be 'json', 'yaml', or 'msgpack'",
		})
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.Workers <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.workers",
			Message: "workers must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
