package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitjain593/workree-chat/internal/domain"
)

func TestRegistryStoreForIsLazyAndStable(t *testing.T) {
	r := NewRegistry(Deps{})
	user := domain.Participant{ID: "u-1", Name: "Alex Rivera"}

	_, ok := r.Lookup("u-1")
	assert.False(t, ok)

	store := r.StoreFor(user)
	require.NotNil(t, store)
	assert.Same(t, store, r.StoreFor(user))

	found, ok := r.Lookup("u-1")
	require.True(t, ok)
	assert.Same(t, store, found)
}

func TestRegistryFirstSnapshotWins(t *testing.T) {
	r := NewRegistry(Deps{})
	store := r.StoreFor(domain.Participant{ID: "u-1", Name: "Alex Rivera"})

	again := r.StoreFor(domain.Participant{ID: "u-1", Name: "Renamed"})
	assert.Same(t, store, again)
	assert.Equal(t, "Alex Rivera", again.Self().Name)
}

func TestRegistryDrop(t *testing.T) {
	r := NewRegistry(Deps{})
	r.StoreFor(domain.Participant{ID: "u-1"})

	r.Drop("u-1")
	_, ok := r.Lookup("u-1")
	assert.False(t, ok)
}

func TestRegistryEach(t *testing.T) {
	r := NewRegistry(Deps{})
	r.StoreFor(domain.Participant{ID: "u-1"})
	r.StoreFor(domain.Participant{ID: "u-2"})

	seen := map[string]bool{}
	r.Each(func(userID string, store *Store) {
		seen[userID] = store != nil
	})
	assert.Equal(t, map[string]bool{"u-1": true, "u-2": true}, seen)
}
