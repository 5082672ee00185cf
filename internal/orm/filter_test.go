package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_RenderEmpty(t *testing.T) {
	d := validDescriptor()

	where, args, err := Filter{}.render(d, SQLiteDialect{})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestFilter_RenderEq_DescriptorOrder(t *testing.T) {
	d := validDescriptor()

	f := Filter{Eq: map[string]any{"is_admin": true, "username": "alice"}}
	where, args, err := f.render(d, SQLiteDialect{})
	require.NoError(t, err)

	// conditions follow descriptor field order regardless of map order
	assert.Equal(t, " WHERE username = ? AND is_admin = ?", where)
	assert.Equal(t, []any{"alice", true}, args)
}

func TestFilter_RenderEq_PostgresPlaceholders(t *testing.T) {
	d := validDescriptor()

	f := Filter{Eq: map[string]any{"username": "alice", "email": "a@b.c"}}
	where, args, err := f.render(d, PostgresDialect{})
	require.NoError(t, err)

	assert.Equal(t, " WHERE username = $1 AND email = $2", where)
	assert.Equal(t, []any{"alice", "a@b.c"}, args)
}

func TestFilter_RawWhereTakesPrecedence(t *testing.T) {
	d := validDescriptor()

	f := Filter{
		Where: "upper(username) = ?",
		Args:  []any{"ALICE"},
		Eq:    map[string]any{"username": "ignored"},
	}
	where, args, err := f.render(d, SQLiteDialect{})
	require.NoError(t, err)

	assert.Equal(t, " WHERE upper(username) = ?", where)
	assert.Equal(t, []any{"ALICE"}, args)
}

func TestFilter_UnknownColumn(t *testing.T) {
	d := validDescriptor()

	_, _, err := Filter{Eq: map[string]any{"no_such": 1}}.render(d, SQLiteDialect{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestByIDAndByField(t *testing.T) {
	d := validDescriptor()

	where, args, err := ByID(d, 7).render(d, SQLiteDialect{})
	require.NoError(t, err)
	assert.Equal(t, " WHERE id = ?", where)
	assert.Equal(t, []any{int64(7)}, args)

	where, args, err = ByField("username", "alice").render(d, SQLiteDialect{})
	require.NoError(t, err)
	assert.Equal(t, " WHERE username = ?", where)
	assert.Equal(t, []any{"alice"}, args)
}
