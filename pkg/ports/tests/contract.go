package tests

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// TreeLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeLoader.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, want *domain.Tree) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Root", func(t *testing.T) {
		tree, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading tree: %v", err)
		}
		if tree.RootMessage != want.RootMessage {
			t.Errorf("root message mismatch. got %q, want %q", tree.RootMessage, want.RootMessage)
		}
		if len(tree.RootOptions) != len(want.RootOptions) {
			t.Fatalf("expected %d root options, got %d", len(want.RootOptions), len(tree.RootOptions))
		}
		for i, opt := range want.RootOptions {
			if tree.RootOptions[i] != opt {
				t.Errorf("root option %d mismatch. got %+v, want %+v", i, tree.RootOptions[i], opt)
			}
		}
	})

	t.Run("Load_Nodes", func(t *testing.T) {
		tree, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading tree: %v", err)
		}
		if len(tree.Nodes) != len(want.Nodes) {
			t.Errorf("expected %d nodes, got %d", len(want.Nodes), len(tree.Nodes))
		}
		for key, expected := range want.Nodes {
			got, ok := tree.Lookup(key)
			if !ok {
				t.Errorf("node %s missing", key)
				continue
			}
			if got.Message != expected.Message {
				t.Errorf("message mismatch for %s. got %q, want %q", key, got.Message, expected.Message)
			}
			if len(got.Options) != len(expected.Options) {
				t.Errorf("option count mismatch for %s. got %d, want %d", key, len(got.Options), len(expected.Options))
				continue
			}
			for i, opt := range expected.Options {
				if got.Options[i] != opt {
					t.Errorf("option %d of %s mismatch. got %+v, want %+v", i, key, got.Options[i], opt)
				}
			}
		}
	})

	t.Run("Load_Isolated", func(t *testing.T) {
		first, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading tree: %v", err)
		}
		first.RootMessage = "mutated"
		first.Nodes["__injected__"] = domain.Node{}

		second, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading tree: %v", err)
		}
		if second.RootMessage != want.RootMessage {
			t.Error("mutating a loaded tree leaked into the next load")
		}
		if _, ok := second.Lookup("__injected__"); ok {
			t.Error("mutating loaded nodes leaked into the next load")
		}
	})
}
