package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(node NodeKey, pending string, texts ...string) *Snapshot {
	s := &Snapshot{SessionID: "sess-1", NodeKey: node, PendingInput: pending}
	for i, t := range texts {
		if i%2 == 0 {
			s.Messages = append(s.Messages, BotMessage(t))
		} else {
			s.Messages = append(s.Messages, UserMessage(t))
		}
	}
	return s
}

func TestDiff(t *testing.T) {
	t.Run("Initial Load", func(t *testing.T) {
		d := Diff(nil, snap(RootKey, "", "Hi"))
		require.NotNil(t, d)
		require.NotNil(t, d.NodeKey)
		assert.Equal(t, RootKey, *d.NodeKey)
		assert.Equal(t, []Message{BotMessage("Hi")}, d.Messages.Appended)
		assert.False(t, d.Messages.Replaced)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(snap(RootKey, "x", "Hi"), snap(RootKey, "x", "Hi")))
	})

	t.Run("Pending Only", func(t *testing.T) {
		d := Diff(snap(RootKey, "", "Hi"), snap(RootKey, "Pri", "Hi"))
		require.NotNil(t, d)
		assert.Nil(t, d.NodeKey)
		assert.Nil(t, d.Messages)
		assert.Equal(t, "Pri", *d.PendingInput)
	})

	t.Run("Transition Appends", func(t *testing.T) {
		d := Diff(snap(RootKey, "Pricing", "Hi"), snap("n1", "", "Hi", "Pricing", "$10"))
		require.NotNil(t, d)
		assert.Equal(t, NodeKey("n1"), *d.NodeKey)
		assert.Equal(t, []Message{UserMessage("Pricing"), BotMessage("$10")}, d.Messages.Appended)
		assert.Equal(t, "", *d.PendingInput)
	})

	t.Run("Reset Replaces", func(t *testing.T) {
		d := Diff(snap("n1", "", "Hi", "Pricing", "$10"), snap(RootKey, "", "Hi"))
		require.NotNil(t, d)
		assert.True(t, d.Messages.Replaced)
		assert.Equal(t, []Message{BotMessage("Hi")}, d.Messages.Appended)
	})

	t.Run("Nil New", func(t *testing.T) {
		assert.Nil(t, Diff(snap(RootKey, ""), nil))
	})
}

func TestDiff_JSON(t *testing.T) {
	d := Diff(snap(RootKey, "", "Hi"), snap(RootKey, "typing", "Hi"))
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"sess-1","pending_input":"typing"}`, string(data))
}
