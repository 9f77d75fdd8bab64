package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/stackscout/models"
)

func TestCredentialPool_YieldsEachOnceInOrder(t *testing.T) {
	pool := NewCredentialPool(creds("a", "b"))
	assert.Equal(t, 2, pool.Len())

	c, ok := pool.Next()
	require.True(t, ok)
	assert.Equal(t, "a", c.Identity)
	assert.Equal(t, 1, pool.Remaining())

	c, ok = pool.Next()
	require.True(t, ok)
	assert.Equal(t, "b", c.Identity)

	_, ok = pool.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, pool.Remaining())
}

func TestDomainQueue_TakeAdvancesCursor(t *testing.T) {
	q := NewDomainQueue([]string{"a.com", "  ", "b.com ", "c.com"})
	require.Equal(t, 3, q.Len())

	batch, remaining := q.Take(2)
	assert.Equal(t, []models.DomainTask{
		{Domain: "a.com", Index: 0},
		{Domain: "b.com", Index: 1},
	}, batch)
	assert.Equal(t, 1, remaining)
	assert.False(t, q.IsExhausted())

	batch, remaining = q.Take(50)
	assert.Equal(t, []models.DomainTask{{Domain: "c.com", Index: 2}}, batch)
	assert.Equal(t, 0, remaining)
	assert.True(t, q.IsExhausted())

	batch, remaining = q.Take(50)
	assert.Empty(t, batch)
	assert.Equal(t, 0, remaining)
}

func TestDomainQueue_From(t *testing.T) {
	q := NewDomainQueue([]string{"a.com", "b.com", "c.com"})
	q.Take(3)

	assert.Len(t, q.From(0), 3)
	assert.Equal(t, "b.com", q.From(1)[0].Domain)
	assert.Nil(t, q.From(3))
	assert.Len(t, q.From(-1), 3)
}

func TestDomainQueue_EmptyIsExhausted(t *testing.T) {
	q := NewDomainQueue(nil)
	assert.True(t, q.IsExhausted())
	assert.Equal(t, 0, q.Remaining())
}
