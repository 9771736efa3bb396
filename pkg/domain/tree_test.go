package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTree_Lookup(t *testing.T) {
	tree := &Tree{
		RootMessage: "Hi",
		Nodes: map[NodeKey]Node{
			"a":     {Message: "A"},
			RootKey: {Message: "shadow"},
		},
	}

	n, ok := tree.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "A", n.Message)

	_, ok = tree.Lookup(RootKey)
	assert.False(t, ok, "the root is never an option target")

	_, ok = tree.Lookup("missing")
	assert.False(t, ok)

	var nilTree *Tree
	_, ok = nilTree.Lookup("a")
	assert.False(t, ok)
}

func TestTree_CloneIsDeep(t *testing.T) {
	tree := &Tree{
		RootMessage: "Hi",
		RootOptions: []Option{{Text: "A", Next: "a"}},
		Nodes:       map[NodeKey]Node{"a": {Message: "A", Options: []Option{{Text: "B", Next: "b"}}}},
	}

	clone := tree.Clone()
	clone.RootOptions[0].Text = "changed"
	clone.Nodes["a"].Options[0].Text = "changed"
	clone.Nodes["new"] = Node{}

	assert.Equal(t, "A", tree.RootOptions[0].Text)
	assert.Equal(t, "B", tree.Nodes["a"].Options[0].Text)
	assert.Len(t, tree.Nodes, 1)
	assert.Nil(t, (*Tree)(nil).Clone())
}

func TestTree_KeysSorted(t *testing.T) {
	tree := &Tree{Nodes: map[NodeKey]Node{"b": {}, "a": {}, "c": {}}}
	assert.Equal(t, []NodeKey{"a", "b", "c"}, tree.Keys())
}

func TestCloneOptions_NeverNil(t *testing.T) {
	assert.NotNil(t, CloneOptions(nil))
	assert.Empty(t, CloneOptions(nil))
}

func TestNode_IsTerminal(t *testing.T) {
	assert.True(t, Node{Message: "end"}.IsTerminal())
	assert.False(t, Node{Options: []Option{{Text: "x"}}}.IsTerminal())
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	a := DialogHooks{OnReset: func(*DialogEvent) { calls = append(calls, "a") }}
	b := DialogHooks{
		OnReset:      func(*DialogEvent) { calls = append(calls, "b") },
		OnTransition: func(*DialogEvent) { calls = append(calls, "b-transition") },
	}

	hooks := ComposeHooks(a, b, DialogHooks{})
	hooks.OnReset(&DialogEvent{})
	hooks.OnTransition(&DialogEvent{})

	assert.Equal(t, []string{"a", "b", "b-transition"}, calls)
	assert.Nil(t, hooks.OnDangling)
	assert.Nil(t, hooks.OnUnmatched)
}
