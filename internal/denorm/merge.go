package denorm

import (
	"github.com/dbsmedya/gonest/internal/types"
)

// merge attaches each relationship's instance list to a copy of every root row.
// The accumulator is only read. Root rows with no instances get an empty list.
func merge(acc *accumulator, opts Options) ([]*types.Row, error) {
	out := make([]*types.Row, 0, len(acc.roots))

	for i, root := range acc.roots {
		nested := root.Clone()
		for _, spec := range opts.Relationships {
			ref, ok := root.Get(spec.ReferenceColumn)
			if !ok {
				return nil, &ColumnError{Row: i, Root: true, Column: spec.ReferenceColumn, Relationship: spec.Name}
			}

			list := acc.bucket.lookup(types.KeyOf(ref), spec.Name)
			items := make([]*types.Row, 0, listLen(list))
			if list != nil {
				for el := list.Front(); el != nil; el = el.Next() {
					items = append(items, el.Value)
				}
			}
			nested.Set(spec.Name, items)
		}
		out = append(out, nested)
	}

	return out, nil
}

func listLen(list *instances) int {
	if list == nil {
		return 0
	}
	return list.Len()
}
