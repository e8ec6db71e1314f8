package denorm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gonest/internal/types"
)

func TestTransform_UsersRolesBooks(t *testing.T) {
	out, err := Transform(userRows(), userOptions())
	require.NoError(t, err)
	require.Len(t, out, 2)

	alice, bob := out[0], out[1]
	assert.Equal(t, []string{"user_id", "user_name", "roles", "books"}, alice.Keys())

	id, _ := alice.Get("user_id")
	assert.Equal(t, 1, id)
	assert.Equal(t, []interface{}{1, 2}, field(relationship(alice, "roles"), "id"))
	assert.Equal(t, []interface{}{"admin", "editor"}, field(relationship(alice, "roles"), "name"))
	assert.Equal(t, []interface{}{1, 2}, field(relationship(alice, "books"), "id"))

	id, _ = bob.Get("user_id")
	assert.Equal(t, 2, id)
	assert.Equal(t, []interface{}{3}, field(relationship(bob, "roles"), "id"))
	assert.Equal(t, []interface{}{3, 4}, field(relationship(bob, "books"), "id"))
	assert.Equal(t, []interface{}{"Ulysses", "Walden"}, field(relationship(bob, "books"), "name"))
}

func TestTransform_JSONShape(t *testing.T) {
	out, err := Transform(userRows()[4:], userOptions())
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"user_id": 2,
		"user_name": "bob",
		"roles": [{"id": 3, "name": "viewer"}],
		"books": [{"id": 3, "name": "Ulysses"}, {"id": 4, "name": "Walden"}]
	}]`, string(data))
}

func TestTransform_InstanceFieldsAreDeprefixedInColumnOrder(t *testing.T) {
	out, err := Transform(userRows(), userOptions())
	require.NoError(t, err)

	roles := relationship(out[0], "roles")
	require.NotEmpty(t, roles)
	assert.Equal(t, []string{"id", "name"}, roles[0].Keys())
}

func TestTransform_EmptyInput(t *testing.T) {
	out, err := Transform(nil, userOptions())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestTransform_NoRelationships(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("id", 1, "name", "a"),
		types.RowFromPairs("id", 1, "name", "a"),
		types.RowFromPairs("id", 2, "name", "b"),
	}

	out, err := Transform(rows, Options{RootPrimaryKey: "id"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"id", "name"}, out[0].Keys())
	assert.Equal(t, map[string]interface{}{"id": 2, "name": "b"}, out[1].Map())
}

func TestTransform_UnmatchedColumnsStayOnRoot(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "email", "a@x", "role_id", 5, "role_name", "ops"),
	}
	out, err := Transform(rows, Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"user_id", "email", "roles"}, out[0].Keys())
}

func TestTransform_AbsentRelationshipYieldsEmptyList(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "role_id", 1, "role_name", "admin", "book_id", nil, "book_name", nil),
		types.RowFromPairs("user_id", 2, "role_id", nil, "role_name", nil, "book_id", nil, "book_name", nil),
	}

	out, err := Transform(rows, userOptions())
	require.NoError(t, err)
	require.Len(t, out, 2)

	books, ok := out[0].Get("books")
	require.True(t, ok, "key must be present even when empty")
	assert.Equal(t, []*types.Row{}, books)
	assert.Len(t, relationship(out[0], "roles"), 1)

	assert.Empty(t, relationship(out[1], "roles"))
	assert.Empty(t, relationship(out[1], "books"))
	assert.True(t, out[1].Has("roles"))
}

func TestTransform_RelationshipColumnsMissingEntirely(t *testing.T) {
	rows := []*types.Row{types.RowFromPairs("user_id", 1)}

	out, err := Transform(rows, userOptions())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, relationship(out[0], "roles"))
	assert.Empty(t, relationship(out[0], "books"))
}

func TestTransform_KeepNullInstances(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "role_id", nil, "role_name", nil),
	}
	opts := Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
		},
		KeepNullInstances: true,
	}

	out, err := Transform(rows, opts)
	require.NoError(t, err)
	roles := relationship(out[0], "roles")
	require.Len(t, roles, 1)
	assert.Equal(t, map[string]interface{}{"id": nil, "name": nil}, roles[0].Map())
}

func TestTransform_EmptyStringKeyIsAnInstance(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "role_id", "", "role_name", "blank"),
	}
	out, err := Transform(rows, userOptions())
	require.NoError(t, err)
	assert.Len(t, relationship(out[0], "roles"), 1)
}

// Root keys that reappear after a different key open a new slot; rows are never regrouped.
func TestTransform_NonContiguousRootKeysProduceDuplicateSlots(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "role_id", 1, "role_name", "admin"),
		types.RowFromPairs("user_id", 2, "role_id", 2, "role_name", "editor"),
		types.RowFromPairs("user_id", 1, "role_id", 3, "role_name", "viewer"),
	}
	opts := Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
		},
	}

	out, err := Transform(rows, opts)
	require.NoError(t, err)
	require.Len(t, out, 3)

	ids := make([]interface{}, 0, len(out))
	for _, r := range out {
		v, _ := r.Get("user_id")
		ids = append(ids, v)
	}
	assert.Equal(t, []interface{}{1, 2, 1}, ids)

	// Instances are bucketed by reference value, so both slots for user 1 see both roles.
	assert.Equal(t, []interface{}{1, 3}, field(relationship(out[0], "roles"), "id"))
	assert.Equal(t, []interface{}{1, 3}, field(relationship(out[2], "roles"), "id"))
	assert.Equal(t, []interface{}{2}, field(relationship(out[1], "roles"), "id"))
}

func TestTransform_FirstMatchingPrefixWins(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("user_id", 1, "role_id", 1, "role_extra_id", 9, "role_extra_note", "x"),
	}

	broad := Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
			{Name: "extras", Prefix: "role_extra_", PrimaryKey: "role_extra_id", ReferenceColumn: "user_id"},
		},
	}
	out, err := Transform(rows, broad)
	require.NoError(t, err)
	roles := relationship(out[0], "roles")
	require.Len(t, roles, 1)
	assert.Equal(t, []string{"id", "extra_id", "extra_note"}, roles[0].Keys())
	assert.Empty(t, relationship(out[0], "extras"))

	narrowFirst := Options{
		RootPrimaryKey: "user_id",
		Relationships:  []RelationshipSpec{broad.Relationships[1], broad.Relationships[0]},
	}
	out, err = Transform(rows, narrowFirst)
	require.NoError(t, err)
	extras := relationship(out[0], "extras")
	require.Len(t, extras, 1)
	assert.Equal(t, []string{"id", "note"}, extras[0].Keys())
	assert.Equal(t, []string{"id"}, relationship(out[0], "roles")[0].Keys())
}

func TestTransform_ReferenceColumnOtherThanRootKey(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("order_id", 10, "customer_id", 7, "note_id", 1, "note_text", "a"),
		types.RowFromPairs("order_id", 11, "customer_id", 7, "note_id", 2, "note_text", "b"),
		types.RowFromPairs("order_id", 12, "customer_id", 8, "note_id", nil, "note_text", nil),
	}
	opts := Options{
		RootPrimaryKey: "order_id",
		Relationships: []RelationshipSpec{
			{Name: "customer_notes", Prefix: "note_", PrimaryKey: "note_id", ReferenceColumn: "customer_id"},
		},
	}

	out, err := Transform(rows, opts)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []interface{}{1, 2}, field(relationship(out[0], "customer_notes"), "id"))
	assert.Equal(t, []interface{}{1, 2}, field(relationship(out[1], "customer_notes"), "id"))
	assert.Empty(t, relationship(out[2], "customer_notes"))
}

func TestTransform_MixedIntegerWidthsGroupTogether(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("id", int64(1), "tag_id", int32(5), "tag_label", "x"),
		types.RowFromPairs("id", int(1), "tag_id", int64(5), "tag_label", "x"),
	}
	opts := Options{
		RootPrimaryKey: "id",
		Relationships: []RelationshipSpec{
			{Name: "tags", Prefix: "tag_", PrimaryKey: "tag_id", ReferenceColumn: "id"},
		},
	}

	out, err := Transform(rows, opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, relationship(out[0], "tags"), 1)
}

func TestTransform_ByteKeysGroupLikeStrings(t *testing.T) {
	rows := []*types.Row{
		types.RowFromPairs("id", []byte("u1"), "tag_id", []byte("t1"), "tag_label", "x"),
		types.RowFromPairs("id", []byte("u1"), "tag_id", []byte("t1"), "tag_label", "x"),
	}
	opts := Options{
		RootPrimaryKey: "id",
		Relationships: []RelationshipSpec{
			{Name: "tags", Prefix: "tag_", PrimaryKey: "tag_id", ReferenceColumn: "id"},
		},
	}

	out, err := Transform(rows, opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, relationship(out[0], "tags"), 1)
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	rows := userRows()
	_, err := Transform(rows, userOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "user_name", "role_id", "role_name", "book_id", "book_name"}, rows[0].Keys())
}

func TestTransform_MissingColumns(t *testing.T) {
	tests := []struct {
		name         string
		rows         []*types.Row
		column       string
		relationship string
		root         bool
	}{
		{
			name:   "root primary key",
			rows:   []*types.Row{types.RowFromPairs("name", "x")},
			column: "user_id",
		},
		{
			name:   "nil row",
			rows:   []*types.Row{nil},
			column: "user_id",
		},
		{
			name:         "relationship primary key",
			rows:         []*types.Row{types.RowFromPairs("user_id", 1, "role_name", "x")},
			column:       "role_id",
			relationship: "roles",
		},
		{
			name:         "reference column",
			rows:         []*types.Row{types.RowFromPairs("user_id", 1, "role_id", 1)},
			column:       "account_id",
			relationship: "roles",
		},
	}

	opts := Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "user_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			if tt.column == "account_id" {
				o.Relationships = []RelationshipSpec{
					{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "account_id"},
				}
			}
			out, err := Transform(tt.rows, o)
			require.Error(t, err)
			assert.Nil(t, out, "no partial output")
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var colErr *ColumnError
			require.True(t, errors.As(err, &colErr))
			assert.Equal(t, tt.column, colErr.Column)
			assert.Equal(t, tt.relationship, colErr.Relationship)
			assert.Equal(t, 0, colErr.Row)
		})
	}
}

func TestTransform_ReferenceColumnMissingOnRootRow(t *testing.T) {
	// No relationship columns at all, so the gap only shows up while merging.
	rows := []*types.Row{types.RowFromPairs("user_id", 1)}
	opts := Options{
		RootPrimaryKey: "user_id",
		Relationships: []RelationshipSpec{
			{Name: "roles", Prefix: "role_", PrimaryKey: "role_id", ReferenceColumn: "account_id"},
		},
	}

	_, err := Transform(rows, opts)
	require.Error(t, err)

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.True(t, colErr.Root)
	assert.Equal(t, "account_id", colErr.Column)
	assert.Contains(t, err.Error(), "root row 0")
}

func TestTransform_InvalidOptions(t *testing.T) {
	_, err := Transform(userRows(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
