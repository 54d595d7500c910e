package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperators(t *testing.T) {
	hash, err := HashPassword("front-desk-1")
	require.NoError(t, err)

	dir := ParseOperators("desk@example.com:" + hash + ":" + RoleReception + ", guard@example.com:" + hash + ":" + RoleSecurity)

	require.Len(t, dir, 2)
	assert.Equal(t, RoleReception, dir["desk@example.com"].Role)
	assert.Equal(t, RoleSecurity, dir["guard@example.com"].Role)
}

func TestParseOperators_SkipsMalformedEntries(t *testing.T) {
	dir := ParseOperators("broken-entry,,desk@example.com:hash:reception")

	require.Len(t, dir, 1)
	assert.Contains(t, dir, "desk@example.com")
}

func TestOperatorDirectory_Authenticate(t *testing.T) {
	hash, err := HashPassword("front-desk-1")
	require.NoError(t, err)
	dir := OperatorDirectory{
		"desk@example.com": {Email: "desk@example.com", PasswordHash: hash, Role: RoleReception},
	}

	op, ok := dir.Authenticate("desk@example.com", "front-desk-1")
	require.True(t, ok)
	assert.Equal(t, RoleReception, op.Role)

	_, ok = dir.Authenticate("desk@example.com", "wrong")
	assert.False(t, ok)

	_, ok = dir.Authenticate("nobody@example.com", "front-desk-1")
	assert.False(t, ok)
}
