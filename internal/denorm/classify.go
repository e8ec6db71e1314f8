package denorm

import "strings"

// Classification tells which relationship a column belongs to.
type Classification struct {
	Relationship    string
	Prefix          string
	PrimaryKey      string
	ReferenceColumn string
	// Field is the column name with the prefix stripped.
	Field string
}

// Classify returns the first relationship whose prefix starts column.
// ok is false for root columns.
func Classify(column string, specs []RelationshipSpec) (c Classification, ok bool) {
	for _, spec := range specs {
		if spec.Prefix == "" || !strings.HasPrefix(column, spec.Prefix) {
			continue
		}
		return Classification{
			Relationship:    spec.Name,
			Prefix:          spec.Prefix,
			PrimaryKey:      spec.PrimaryKey,
			ReferenceColumn: spec.ReferenceColumn,
			Field:           strings.TrimPrefix(column, spec.Prefix),
		}, true
	}
	return Classification{}, false
}

// classifier memoizes Classify per column name for the duration of one call.
type classifier struct {
	specs []RelationshipSpec
	cache map[string]classified
}

type classified struct {
	Classification
	isRelationship bool
}

func newClassifier(specs []RelationshipSpec) *classifier {
	return &classifier{specs: specs, cache: make(map[string]classified)}
}

func (c *classifier) classify(column string) (Classification, bool) {
	if hit, ok := c.cache[column]; ok {
		return hit.Classification, hit.isRelationship
	}
	cls, ok := Classify(column, c.specs)
	c.cache[column] = classified{Classification: cls, isRelationship: ok}
	return cls, ok
}
