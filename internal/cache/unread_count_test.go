package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadKey(t *testing.T) {
	assert.Equal(t, "vidshelf:notifications:unread:42", UnreadKey(42))
}

func TestDisabledCounterIsAlwaysAMiss(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*UnreadCounter{nil, NewUnreadCounter(nil, 0)} {
		require.NoError(t, c.Set(ctx, 1, 3))
		n, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, n)
		assert.NoError(t, c.Invalidate(ctx, 1))
	}
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultUnreadTTL, NewUnreadCounter(nil, -1).ttl)
}
