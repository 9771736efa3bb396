package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.TreeLoader reading a single YAML or JSON file.
type Loader struct {
	Path string
}

// NewLoader creates a loader for the tree file at path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load reads and decodes the tree file. The format follows the extension
// (.json is JSON, anything else is YAML).
func (l *Loader) Load(ctx context.Context) (*domain.Tree, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(l.Path), ".json") {
		format = "json"
	}

	tree, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return tree, nil
}

// document is the authored layout. Exactly one of the three root forms must be set.
type document struct {
	Root *domain.Node `mapstructure:"root"`

	RootMessage *string         `mapstructure:"root_message"`
	RootOptions []domain.Option `mapstructure:"root_options"`

	Message *string         `mapstructure:"message"`
	Options []domain.Option `mapstructure:"options"`

	Nodes map[string]domain.Node `mapstructure:"nodes"`
}

// Parse decodes a tree from raw bytes. format is "json" or "yaml".
func Parse(data []byte, format string) (*domain.Tree, error) {
	raw := make(map[string]any)

	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse tree json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse tree yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported tree format %q", format)
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true, // next: 2 is a valid key
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTree, err)
	}

	return doc.tree()
}

func (d document) tree() (*domain.Tree, error) {
	tree := &domain.Tree{
		Nodes: make(map[domain.NodeKey]domain.Node, len(d.Nodes)),
	}

	forms := 0
	if d.Root != nil {
		forms++
		tree.RootMessage = d.Root.Message
		tree.RootOptions = d.Root.Options
	}
	if d.RootMessage != nil || d.RootOptions != nil {
		forms++
		if d.RootMessage != nil {
			tree.RootMessage = *d.RootMessage
		}
		tree.RootOptions = d.RootOptions
	}
	if d.Message != nil || d.Options != nil {
		forms++
		if d.Message != nil {
			tree.RootMessage = *d.Message
		}
		tree.RootOptions = d.Options
	}

	switch {
	case forms == 0:
		return nil, fmt.Errorf("%w: no root message defined", domain.ErrInvalidTree)
	case forms > 1:
		return nil, fmt.Errorf("%w: root defined more than once", domain.ErrInvalidTree)
	}

	for key, node := range d.Nodes {
		if key == "" {
			return nil, fmt.Errorf("%w: node key cannot be empty", domain.ErrInvalidTree)
		}
		tree.Nodes[domain.NodeKey(key)] = node
	}

	return tree, nil
}
