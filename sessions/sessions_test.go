package sessions

import (
	"context"
	"testing"
	"time"

	"minigram/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	token, err := s.Issue(ctx, 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	require.NoError(t, s.Revoke(ctx, token))

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := NewMemoryStore(time.Minute)
	s.Now = func() time.Time { return now }

	token, err := s.Issue(ctx, 1)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = s.Resolve(ctx, token)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	_, err := NewMemoryStore(0).Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
