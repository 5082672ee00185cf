package orm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_One_Single(t *testing.T) {
	r := &Result{table: "users", records: []Record{{"id": int64(1)}}}

	rec, err := r.One()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])
}

func TestResult_One_Miss(t *testing.T) {
	r := &Result{table: "users"}

	_, err := r.One()
	var miss *LookupMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "users", miss.Table)
}

func TestResult_One_Ambiguous(t *testing.T) {
	r := &Result{table: "users", records: []Record{{"id": int64(1)}, {"id": int64(2)}}}

	_, err := r.One()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousResult))
}

func TestResult_AllAndLen(t *testing.T) {
	r := &Result{table: "users"}
	assert.Empty(t, r.All())
	assert.Zero(t, r.Len())

	r = &Result{table: "users", records: []Record{{}, {}}}
	assert.Len(t, r.All(), 2)
	assert.Equal(t, 2, r.Len())
}
