package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a tree. Node is domain.RootKey for the greeting.
type Issue struct {
	Severity Severity
	Node     domain.NodeKey
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Severity, displayKey(i.Node), i.Message)
}

func displayKey(key domain.NodeKey) string {
	if key == domain.RootKey {
		return "root"
	}
	return string(key)
}

// Check walks the tree breadth-first from the root and reports broken links,
// empty messages, shadowed option labels and unreachable nodes.
func Check(tree *domain.Tree) []Issue {
	if tree == nil {
		return []Issue{{Severity: SeverityError, Node: domain.RootKey, Message: "tree is nil"}}
	}

	var issues []Issue
	report := func(sev Severity, key domain.NodeKey, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Node: key, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(tree.RootMessage) == "" {
		report(SeverityError, domain.RootKey, "root message is empty")
	}
	if _, ok := tree.Nodes[domain.RootKey]; ok {
		report(SeverityError, domain.RootKey, "node key cannot be empty")
	}

	visited := map[domain.NodeKey]bool{domain.RootKey: true}
	queue := []domain.NodeKey{domain.RootKey}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		node := tree.Root()
		if key != domain.RootKey {
			node, _ = tree.Lookup(key)
			if strings.TrimSpace(node.Message) == "" {
				report(SeverityError, key, "message is empty")
			}
		}

		labels := make(map[string]bool, len(node.Options))
		for _, opt := range node.Options {
			if labels[opt.Text] {
				report(SeverityWarning, key, "option %q is defined more than once; only the first is reachable", opt.Text)
			}
			labels[opt.Text] = true

			if trimmed := dialog.TrimInput(opt.Text); trimmed == "" {
				report(SeverityWarning, key, "option pointing to %q has an empty label", opt.Next)
			} else if trimmed != opt.Text {
				report(SeverityWarning, key, "option %q has surrounding whitespace and can never match; replies are trimmed", opt.Text)
			}

			if _, ok := tree.Lookup(opt.Next); !ok {
				report(SeverityError, key, "option %q points to missing node %q", opt.Text, opt.Next)
				continue
			}
			if !visited[opt.Next] {
				visited[opt.Next] = true
				queue = append(queue, opt.Next)
			}
		}
	}

	for _, key := range tree.Keys() {
		if key != domain.RootKey && !visited[key] {
			report(SeverityWarning, key, "node is unreachable from the root")
		}
	}

	return issues
}

// Errors filters issues down to SeverityError.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ValidateTree returns an error wrapping domain.ErrInvalidTree when Check finds any error.
// Warnings never fail validation.
func ValidateTree(tree *domain.Tree) error {
	errs := Errors(Check(tree))
	if len(errs) == 0 {
		return nil
	}

	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidTree, len(errs), strings.Join(lines, "\n- "))
}
