// Package config provides configuration structures and loading for gonest.
package config

// Config represents the complete application configuration.
type Config struct {
	Database   DatabaseConfig       `yaml:"database" mapstructure:"database"`
	Jobs       map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Output     OutputConfig         `yaml:"output" mapstructure:"output"`
	Processing ProcessingConfig     `yaml:"processing" mapstructure:"processing"`
	Logging    LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents the connection the query command reads rows from.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql, postgres, sqlite
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"` // 0 selects the driver default
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"`   // disable, preferred, required
	Path               string `yaml:"path" mapstructure:"path"` // sqlite file
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// JobConfig binds a JOIN query to the options used to nest its result.
type JobConfig struct {
	Query             string               `yaml:"query" mapstructure:"query"`
	Args              []interface{}        `yaml:"args" mapstructure:"args"`
	RootPrimaryKey    string               `yaml:"root_primary_key" mapstructure:"root_primary_key"`
	KeepNullInstances bool                 `yaml:"keep_null_instances" mapstructure:"keep_null_instances"`
	Relationships     []RelationshipConfig `yaml:"relationships" mapstructure:"relationships"` // matched in order
	Output            *OutputConfig        `yaml:"output,omitempty" mapstructure:"output"`
}

// RelationshipConfig describes one relationship flattened into prefixed columns.
type RelationshipConfig struct {
	Name            string `yaml:"name" mapstructure:"name"`
	Prefix          string `yaml:"prefix" mapstructure:"prefix"`
	PrimaryKey      string `yaml:"primary_key" mapstructure:"primary_key"`           // full column name, prefix included
	ReferenceColumn string `yaml:"reference_column" mapstructure:"reference_column"` // root-side column
}

// OutputConfig represents how nested rows are written.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // json, yaml, msgpack
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// ProcessingConfig represents execution settings.
type ProcessingConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // concurrent jobs for query --all
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:             "mysql",
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Processing: ProcessingConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// GetJobOutput returns the output config for a job by name, falling back to global if not set.
func (c *Config) GetJobOutput(jobName string) OutputConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Output
	}
	return job.GetJobOutput(c.Output)
}

// GetJobOutput returns the output config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobOutput(global OutputConfig) OutputConfig {
	if jc.Output == nil {
		return global
	}

	result := global
	if jc.Output.Format != "" {
		result.Format = jc.Output.Format
	}
	result.Pretty = jc.Output.Pretty || global.Pretty
	return result
}
