package validator

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTree() *domain.Tree {
	return &domain.Tree{
		RootMessage: "Hi",
		RootOptions: []domain.Option{{Text: "A", Next: "a"}},
		Nodes: map[domain.NodeKey]domain.Node{
			"a": {Message: "At A", Options: []domain.Option{{Text: "B", Next: "b"}}},
			"b": {Message: "At B"},
		},
	}
}

func TestValidateTree_Valid(t *testing.T) {
	assert.NoError(t, ValidateTree(validTree()))
	assert.Empty(t, Check(validTree()))
}

func TestValidateTree_BrokenLink(t *testing.T) {
	tree := validTree()
	tree.Nodes["b"] = domain.Node{Message: "At B", Options: []domain.Option{{Text: "Go", Next: "ghost"}}}

	err := ValidateTree(tree)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTree)
	assert.Contains(t, err.Error(), `points to missing node "ghost"`)
	assert.Contains(t, err.Error(), "[b]")
}

func TestCheck_Findings(t *testing.T) {
	tree := &domain.Tree{
		RootMessage: "  ",
		RootOptions: []domain.Option{
			{Text: "A", Next: "a"},
			{Text: "A", Next: "b"},
			{Text: "", Next: "a"},
		},
		Nodes: map[domain.NodeKey]domain.Node{
			"a":      {Message: ""},
			"b":      {Message: "At B"},
			"orphan": {Message: "Nobody links here"},
		},
	}

	issues := Check(tree)

	assert.Contains(t, issues, Issue{Severity: SeverityError, Node: domain.RootKey, Message: "root message is empty"})
	assert.Contains(t, issues, Issue{Severity: SeverityError, Node: "a", Message: "message is empty"})
	assert.Contains(t, issues, Issue{Severity: SeverityWarning, Node: domain.RootKey, Message: `option "A" is defined more than once; only the first is reachable`})
	assert.Contains(t, issues, Issue{Severity: SeverityWarning, Node: domain.RootKey, Message: `option pointing to "a" has an empty label`})
	assert.Contains(t, issues, Issue{Severity: SeverityWarning, Node: "orphan", Message: "node is unreachable from the root"})
	assert.Len(t, Errors(issues), 2)
}

func TestCheck_PaddedLabel(t *testing.T) {
	tree := validTree()
	tree.RootOptions = []domain.Option{{Text: " A", Next: "a"}, {Text: "\uFEFFB", Next: "b"}}

	issues := Check(tree)

	assert.Contains(t, issues, Issue{Severity: SeverityWarning, Node: domain.RootKey, Message: `option " A" has surrounding whitespace and can never match; replies are trimmed`})
	assert.Len(t, issues, 2)
	assert.NoError(t, ValidateTree(tree), "warnings never fail validation")
}

func TestCheck_OptionToRootIsDangling(t *testing.T) {
	tree := validTree()
	tree.Nodes["b"] = domain.Node{Message: "At B", Options: []domain.Option{{Text: "Start over", Next: domain.RootKey}}}

	errs := Errors(Check(tree))
	require.Len(t, errs, 1)
	assert.Equal(t, domain.NodeKey("b"), errs[0].Node)
}

func TestCheck_EmptyNodeKey(t *testing.T) {
	tree := validTree()
	tree.Nodes[domain.RootKey] = domain.Node{Message: "shadow"}

	errs := Errors(Check(tree))
	require.Len(t, errs, 1)
	assert.Equal(t, "error [root]: node key cannot be empty", errs[0].String())
}

func TestCheck_NilTree(t *testing.T) {
	assert.Error(t, ValidateTree(nil))
}

func TestCheck_Cycles(t *testing.T) {
	tree := validTree()
	tree.Nodes["b"] = domain.Node{Message: "At B", Options: []domain.Option{{Text: "Back", Next: "a"}}}
	assert.Empty(t, Check(tree))
}
