package sqlutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple", input: "user_id", valid: true},
		{name: "mixed case", input: "RoleName", valid: true},
		{name: "digits", input: "book2_id", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "qualified", input: "users.id", valid: false},
		{name: "space", input: "user id", valid: false},
		{name: "backtick", input: "user`id", valid: false},
		{name: "injection", input: "id; DROP TABLE users", valid: false},
		{name: "unicode", input: "usér_id", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidIdentifier(tt.input))
		})
	}
}

func TestCheckIdentifier(t *testing.T) {
	assert.NoError(t, CheckIdentifier("role_id"))

	err := CheckIdentifier("role-id")
	require.Error(t, err)

	var invalid *InvalidIdentifierError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "role-id", invalid.Name)
	assert.Contains(t, err.Error(), "invalid identifier: role-id")
}
