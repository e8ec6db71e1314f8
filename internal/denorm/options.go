// Package denorm nests flat, JOIN-produced row sets into root rows that carry
// one deduplicated list per configured relationship.
package denorm

import (
	"errors"
	"fmt"
)

// RelationshipSpec describes one relationship flattened into prefixed columns.
type RelationshipSpec struct {
	// Name is the output key the instance list is stored under.
	Name string
	// Prefix recognizes the relationship's columns and is stripped from them.
	Prefix string
	// PrimaryKey is the full column name, prefix included, identifying one instance.
	PrimaryKey string
	// ReferenceColumn is the root-side column whose value owns the instances.
	ReferenceColumn string
}

// Options configures Transform.
//
// Relationships are matched against columns in slice order and the first matching
// prefix wins. Overlapping prefixes such as "role_" and "role_extra_" are the
// caller's responsibility: declare the longer one first.
type Options struct {
	RootPrimaryKey string
	Relationships  []RelationshipSpec
	// KeepNullInstances keeps instances whose primary key is NULL. By default a
	// NULL key means the LEFT JOIN found no match and the row contributes nothing.
	KeepNullInstances bool
}

// Validate checks the options without looking at any rows.
func (o Options) Validate() error {
	var errs []error

	if o.RootPrimaryKey == "" {
		errs = append(errs, &ConfigError{Field: "root_primary_key", Message: "is required"})
	}

	seen := make(map[string]bool, len(o.Relationships))
	for i, spec := range o.Relationships {
		field := fmt.Sprintf("relationships[%d]", i)
		if spec.Name != "" {
			field = fmt.Sprintf("relationships[%s]", spec.Name)
		}

		if spec.Name == "" {
			errs = append(errs, &ConfigError{Field: field + ".name", Message: "is required"})
		} else if seen[spec.Name] {
			errs = append(errs, &ConfigError{Field: field + ".name", Message: "is declared more than once"})
		}
		seen[spec.Name] = true

		if spec.Prefix == "" {
			errs = append(errs, &ConfigError{Field: field + ".prefix", Message: "is required"})
		}
		if spec.PrimaryKey == "" {
			errs = append(errs, &ConfigError{Field: field + ".primary_key", Message: "is required"})
		}
		if spec.ReferenceColumn == "" {
			errs = append(errs, &ConfigError{Field: field + ".reference_column", Message: "is required"})
		} else if owner, ok := Classify(spec.ReferenceColumn, o.Relationships); ok {
			// The reference value is read back from the root row, so it must stay a root column.
			errs = append(errs, &ConfigError{
				Field:   field + ".reference_column",
				Message: fmt.Sprintf("%q matches the prefix of relationship %q and would never reach the root row", spec.ReferenceColumn, owner.Relationship),
			})
		}
	}

	if o.RootPrimaryKey != "" {
		if owner, ok := Classify(o.RootPrimaryKey, o.Relationships); ok {
			errs = append(errs, &ConfigError{
				Field:   "root_primary_key",
				Message: fmt.Sprintf("%q matches the prefix of relationship %q", o.RootPrimaryKey, owner.Relationship),
			})
		}
	}

	return errors.Join(errs...)
}
