package loam

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var supportDocs = map[string]string{
	"start.md": `---
options:
  - text: Pricing
    next: pricing
  - text: Support
    to: support.md
---
Hi, how can I help?`,
	"pricing.md": `---
id: pricing
---
Our plans start at $10`,
	"support.md": `---
options:
  - text: Billing
    next: billing
---
What do you need help with?
`,
	"billing.md": `---
message: Billing is handled by email.
---
`,
}

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.SetupTreeRepo(t, files)
	return New(loam.NewTypedRepository[NodeMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	want := &domain.Tree{
		RootMessage: "Hi, how can I help?",
		RootOptions: []domain.Option{
			{Text: "Pricing", Next: "pricing"},
			{Text: "Support", Next: "support"},
		},
		Nodes: map[domain.NodeKey]domain.Node{
			"pricing": {Message: "Our plans start at $10"},
			"support": {
				Message: "What do you need help with?",
				Options: []domain.Option{{Text: "Billing", Next: "billing"}},
			},
			"billing": {Message: "Billing is handled by email."},
		},
	}

	tests.TreeLoaderContractTest(t, newLoader(t, supportDocs), want)
}

func TestLoader_CustomRoot(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"welcome.md": "Welcome!",
		"other.md":   "Other",
	})
	loader.RootID = "welcome"

	tree, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", tree.RootMessage)
	assert.Len(t, tree.Nodes, 1)
	_, ok := tree.Lookup("other")
	assert.True(t, ok)
}

func TestLoader_MissingRoot(t *testing.T) {
	loader := newLoader(t, map[string]string{"other.md": "Other"})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTree)
	assert.Contains(t, err.Error(), "start")
}

func TestLoader_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"start.md": "Hi",
		"foo.md": `---
id: foo
---
Explicit ID`,
		"bar.md": `---
id: foo.md
---
Same ID with extension`,
	})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTree)
	assert.Contains(t, err.Error(), "foo")
}

func TestOptionMetadata_Target(t *testing.T) {
	assert.Equal(t, "a", OptionMetadata{Next: "a", To: "b"}.target())
	assert.Equal(t, "b", OptionMetadata{To: "b.md"}.target())
	assert.Equal(t, "dir/c", OptionMetadata{To: "dir/c.md"}.target())
	assert.Equal(t, "", OptionMetadata{}.target())
}

func TestBuildNode_PrefersBody(t *testing.T) {
	node := buildNode(NodeMetadata{Message: "fallback"}, "\n  body text \n")
	assert.Equal(t, "body text", node.Message)
	assert.True(t, node.IsTerminal())

	node = buildNode(NodeMetadata{Message: "fallback"}, "   ")
	assert.Equal(t, "fallback", node.Message)
}
