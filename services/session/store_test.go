package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyago/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestStoreRoundTripsState(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	state := models.NewConversationState("conv-1")
	state.Phase = models.PhaseCollecting
	state.Slots.Destination = "Турция"
	state.Slots.Nights = 7
	state.LastAsked = models.SlotDeparture
	state.AppendMessage("user", "хочу в Турцию на неделю", 20)

	require.NoError(t, store.Save(ctx, state))
	assert.False(t, state.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got.ID)
	assert.Equal(t, models.PhaseCollecting, got.Phase)
	assert.Equal(t, "Турция", got.Slots.Destination)
	assert.Equal(t, 7, got.Slots.Nights)
	assert.Equal(t, models.SlotDeparture, got.LastAsked)
	require.Len(t, got.History, 1)
	assert.Equal(t, "хочу в Турцию на неделю", got.History[0].Text)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nope")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestStateExpiresAfterTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.NewConversationState("conv-1")))
	mr.FastForward(61 * time.Minute)

	_, err := store.Get(ctx, "conv-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	state := models.NewConversationState("conv-1")
	require.NoError(t, store.Save(ctx, state))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Save(ctx, state))
	mr.FastForward(45 * time.Minute)

	_, err := store.Get(ctx, "conv-1")
	require.NoError(t, err, "an active conversation must not expire mid-dialogue")
}

func TestDeleteResetsConversation(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.NewConversationState("conv-1")))
	require.NoError(t, store.Delete(ctx, "conv-1"))

	_, err := store.Get(ctx, "conv-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "conv-1"), "deleting a missing conversation is idempotent")
}
