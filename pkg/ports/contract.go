package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	seed := func(id string) *domain.Snapshot {
		return &domain.Snapshot{
			SessionID: id,
			NodeKey:   domain.RootKey,
			Messages:  []domain.Message{domain.BotMessage("Hi, how can I help?")},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := seed(sessionID)
		snap.NodeKey = "support"
		snap.Messages = append(snap.Messages,
			domain.UserMessage("Support"),
			domain.BotMessage("What do you need help with?"),
		)
		snap.PendingInput = "Bil"

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.NodeKey, loaded.NodeKey)
		assert.Equal(t, snap.Messages, loaded.Messages)
		assert.Equal(t, "Bil", loaded.PendingInput)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		snap := seed(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, snap))

		snap.Messages[0].Text = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Hi, how can I help?", loaded.Messages[0].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, seed(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, seed(id1))
		_ = store.Save(ctx, id2, seed(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
