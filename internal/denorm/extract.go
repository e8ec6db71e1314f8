package denorm

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gonest/internal/types"
)

// instances holds one relationship's instances keyed by normalized primary key,
// in first-seen order.
type instances = orderedmap.OrderedMap[interface{}, *types.Row]

// bucket is keyed by reference value, then relationship name, then primary key.
// Repeated join rows land on the same leaf, which is what deduplicates them.
type bucket map[interface{}]map[string]*instances

// accumulator is the owned result of the extraction pass.
type accumulator struct {
	roots   []*types.Row
	bucket  bucket
	skipped int // rows whose relationship primary key was NULL
}

func (b bucket) instancesFor(ref interface{}, relationship string) *instances {
	byName, ok := b[ref]
	if !ok {
		byName = make(map[string]*instances)
		b[ref] = byName
	}
	list, ok := byName[relationship]
	if !ok {
		list = orderedmap.NewOrderedMap[interface{}, *types.Row]()
		byName[relationship] = list
	}
	return list
}

// lookup never allocates; a missing entry means the relationship is absent.
func (b bucket) lookup(ref interface{}, relationship string) *instances {
	return b[ref][relationship]
}

// extract splits every column into root columns and relationship buckets.
//
// A new root slot starts whenever the root key differs from the previous row's.
// Rows are not regrouped: a root key that reappears after a different one opens
// a second slot.
func extract(rows []*types.Row, opts Options) (*accumulator, error) {
	acc := &accumulator{bucket: make(bucket)}
	cls := newClassifier(opts.Relationships)

	var current *types.Row
	var currentKey interface{}

	for i, row := range rows {
		rootValue, ok := row.Get(opts.RootPrimaryKey)
		if !ok {
			return nil, &ColumnError{Row: i, Column: opts.RootPrimaryKey}
		}
		rootKey := types.KeyOf(rootValue)
		if current == nil || rootKey != currentKey {
			current = types.NewRow()
			acc.roots = append(acc.roots, current)
			currentKey = rootKey
		}

		var err error
		row.Each(func(column string, value interface{}) {
			if err != nil {
				return
			}
			c, isRel := cls.classify(column)
			if !isRel {
				current.Set(column, value)
				return
			}
			err = acc.route(i, row, c, column, value, opts.KeepNullInstances)
		})
		if err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// route writes one relationship column into the bucket.
func (acc *accumulator) route(i int, row *types.Row, c Classification, column string, value interface{}, keepNull bool) error {
	ref, ok := row.Get(c.ReferenceColumn)
	if !ok {
		return &ColumnError{Row: i, Column: c.ReferenceColumn, Relationship: c.Relationship}
	}
	pk, ok := row.Get(c.PrimaryKey)
	if !ok {
		return &ColumnError{Row: i, Column: c.PrimaryKey, Relationship: c.Relationship}
	}
	if pk == nil && !keepNull {
		if column == c.PrimaryKey {
			acc.skipped++
		}
		return nil
	}

	list := acc.bucket.instancesFor(types.KeyOf(ref), c.Relationship)
	pkKey := types.KeyOf(pk)
	inst, ok := list.Get(pkKey)
	if !ok {
		inst = types.NewRow()
		list.Set(pkKey, inst)
	}
	inst.Set(c.Field, value)
	return nil
}
