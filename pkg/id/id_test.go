package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestAtAndTime(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 11, 5, 10, 30, 0, 0, time.UTC)
	got, err := Time(At(when))
	require.NoError(t, err)
	assert.True(t, got.Equal(when))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}

func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "01HXYZAB", Short("01HXYZABCDEFGHJKMNPQRSTVWX"))
	assert.Equal(t, "abc", Short("abc"))
}
