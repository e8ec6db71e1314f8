// Package sqlutil provides SQL identifier checks for gonest configuration.
package sqlutil

import (
	"regexp"
)

// validIdentifierRegex matches the column aliases gonest expects a JOIN query to
// produce: letters, digits and underscores.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name is a plain column identifier.
// Qualified names such as "users.id" are rejected: result sets carry aliases, not table paths.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// CheckIdentifier returns an *InvalidIdentifierError when name is not a plain identifier.
func CheckIdentifier(name string) error {
	if !IsValidIdentifier(name) {
		return &InvalidIdentifierError{Name: name}
	}
	return nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
