package cache

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, 360*time.Second, nil), mr
}

func TestNewRequestIDShape(t *testing.T) {
	id, err := NewRequestID()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{33}$`), id)

	other, err := NewRequestID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestGetConversationIDCreatesAndReuses(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetConversationID(ctx, "medical_rag_bot", "user_1")
	require.NoError(t, err)
	stored, err := mr.Get("medical_rag_bot.user_1")
	require.NoError(t, err)
	assert.Equal(t, first, stored)
	assert.Equal(t, 360*time.Second, mr.TTL("medical_rag_bot.user_1"))

	mr.FastForward(300 * time.Second)
	second, err := store.GetConversationID(ctx, "medical_rag_bot", "user_1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 360*time.Second, mr.TTL("medical_rag_bot.user_1"), "ttl is refreshed on access")
}

func TestGetConversationIDExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetConversationID(ctx, "bot", "u")
	require.NoError(t, err)

	mr.FastForward(361 * time.Second)
	second, err := store.GetConversationID(ctx, "bot", "u")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDeleteConversationID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetConversationID(ctx, "bot", "u")
	require.NoError(t, err)

	deleted, err := store.DeleteConversationID(ctx, "bot", "u")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteConversationID(ctx, "bot", "u")
	require.NoError(t, err)
	assert.False(t, deleted)

	next, err := store.GetConversationID(ctx, "bot", "u")
	require.NoError(t, err)
	assert.NotEqual(t, first, next)
}

func TestPingAndErrors(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := NewRedisClient(mr.Addr(), "", 0)
	defer client.Close()
	mr.Close()

	broken := NewRedisSessionStore(client, time.Minute, nil)
	_, err = broken.GetConversationID(context.Background(), "bot", "u")
	assert.Error(t, err)
}
