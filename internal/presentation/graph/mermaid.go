package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// rootID is the Mermaid ID of the greeting.
const rootID = "__root"

// GraphOverlay contains dynamic session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []domain.NodeKey
	CurrentNode  domain.NodeKey
}

// OverlayFromSnapshot replays the transcript's user entries against the tree
// to recover the visited path; the current node comes from the snapshot.
func OverlayFromSnapshot(tree *domain.Tree, snap *domain.Snapshot) *GraphOverlay {
	overlay := &GraphOverlay{
		VisitedNodes: []domain.NodeKey{domain.RootKey},
		CurrentNode:  snap.NodeKey,
	}

	options := tree.RootOptions
	for _, msg := range snap.Messages {
		if msg.Sender != domain.SenderUser {
			continue
		}
		input := strings.TrimSpace(msg.Text)
		for _, opt := range options {
			if opt.Text != input {
				continue
			}
			if node, ok := tree.Lookup(opt.Next); ok {
				overlay.VisitedNodes = append(overlay.VisitedNodes, opt.Next)
				options = node.Options
			}
			break
		}
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Terminal: ([Stadium])
// - Default: [Rectangle]
// - Missing targets: red rectangle
// Edges are labeled with the option text.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(tree *domain.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	if tree == nil {
		return sb.String()
	}

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", rootID, "start")
	missing := writeEdges(&sb, tree, domain.RootKey, tree.RootOptions)

	for _, key := range tree.Keys() {
		if key == domain.RootKey {
			continue
		}
		node := tree.Nodes[key]
		safeID := mermaidID(key)

		opener, closer := "[", "]"
		if node.IsTerminal() {
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(string(key)), closer)

		for k := range writeEdges(&sb, tree, key, node.Options) {
			missing[k] = true
		}
	}

	if len(missing) > 0 {
		sb.WriteString("\n    %% Missing targets\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#b71c1c;\n")
		keys := make([]domain.NodeKey, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			fmt.Fprintf(&sb, "    %s[\"missing: %s\"]\n", missingID(k), escapeLabel(string(k)))
			fmt.Fprintf(&sb, "    class %s missing;\n", missingID(k))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, key := range overlay.VisitedNodes {
			safeID := nodeID(tree, key)
			if safeID != "" && !visitedSet[safeID] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if current := nodeID(tree, overlay.CurrentNode); current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", current)
		}
	}

	return sb.String()
}

// writeEdges draws one labeled edge per option and returns the targets that do not resolve.
func writeEdges(sb *strings.Builder, tree *domain.Tree, from domain.NodeKey, options []domain.Option) map[domain.NodeKey]bool {
	missing := make(map[domain.NodeKey]bool)
	fromID := nodeID(tree, from)

	for _, opt := range options {
		toID := mermaidID(opt.Next)
		if _, ok := tree.Lookup(opt.Next); !ok {
			missing[opt.Next] = true
			toID = missingID(opt.Next)
		}
		fmt.Fprintf(sb, "    %s -- \"%s\" --> %s\n", fromID, escapeLabel(opt.Text), toID)
	}
	return missing
}

// nodeID maps a key to its Mermaid ID, or "" if the key is not part of the tree.
func nodeID(tree *domain.Tree, key domain.NodeKey) string {
	if key == domain.RootKey {
		return rootID
	}
	if _, ok := tree.Lookup(key); !ok {
		return ""
	}
	return mermaidID(key)
}

func mermaidID(key domain.NodeKey) string {
	return sanitizeMermaidID(string(key))
}

func missingID(key domain.NodeKey) string {
	if key == domain.RootKey {
		return "missing__root"
	}
	return "missing_" + sanitizeMermaidID(string(key))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
