package denorm

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every error Transform returns. Such errors are
// deterministic: the options or the rows must change before a retry can succeed.
var ErrInvalidConfig = errors.New("denorm: invalid configuration")

// ConfigError describes a problem with Options themselves.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("denorm: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ColumnError reports a row that lacks a column the options refer to.
type ColumnError struct {
	Row          int    // index of the input row, or of the root row when Root is set
	Root         bool   // raised while attaching relationships to a root row
	Column       string // the missing column
	Relationship string // relationship that required the column, empty for the root key
}

func (e *ColumnError) Error() string {
	scope := "row"
	if e.Root {
		scope = "root row"
	}
	if e.Relationship == "" {
		return fmt.Sprintf("denorm: %s %d: missing column %q", scope, e.Row, e.Column)
	}
	return fmt.Sprintf("denorm: %s %d: missing column %q required by relationship %q",
		scope, e.Row, e.Column, e.Relationship)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ColumnError) Is(target error) bool {
	return target == ErrInvalidConfig
}
