package cli

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultTreeFiles are tried, in order, when no tree is given.
var DefaultTreeFiles = []string{"arbor.yaml", "arbor.yml", "arbor.json"}

// ErrNoTree is returned when no tree path is configured or found.
var ErrNoTree = errors.New("no dialog tree: pass --tree, set ARBOR_TREE or add arbor.yaml to the working directory")

// ResolveTree picks the tree source: the flag, then the environment, then a
// default file in dir.
func ResolveTree(flag, fromEnv, dir string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if fromEnv != "" {
		return fromEnv, nil
	}
	for _, name := range DefaultTreeFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoTree
}
