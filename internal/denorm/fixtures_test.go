package denorm

import (
	"github.com/dbsmedya/gonest/internal/types"
)

// userRows is two users joined with roles and books: user 1 has 2 roles x 2 books,
// user 2 has 1 role x 2 books.
func userRows() []*types.Row {
	row := func(userID int, userName string, roleID int, roleName string, bookID int, bookName string) *types.Row {
		return types.RowFromPairs(
			"user_id", userID,
			"user_name", userName,
			"role_id", roleID,
			"role_name", roleName,
			"book_id", bookID,
			"book_name", bookName,
		)
	}
	return []*types.Row{
		row(1, "alice", 1, "admin", 1, "Dune"),
		row(1, "alice", 1, "admin", 2, "Emma"),
		row(1, "alice", 2, "editor", 1, "Dune"),
		row(1, "alice", 2, "editor", 2, "Emma"),
		row(2, "bob", 3, "viewer", 3, "Ulysses"),
		row(2, "bob", 3, "viewer", 4, "Walden"),
	}
}

func userOptions() Options {
	return Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
			{Name: "books", Prefix: "book_", PrimaryKey: "book_id", ReferenceColumn: "user_id"},
		},
	}
}

// relationship returns the instance list attached under name.
func relationship(row *types.Row, name string) []*types.Row {
	v, _ := row.Get(name)
	items, _ := v.([]*types.Row)
	return items
}

// field collects one field from each instance.
func field(items []*types.Row, name string) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		v, _ := it.Get(name)
		out = append(out, v)
	}
	return out
}
