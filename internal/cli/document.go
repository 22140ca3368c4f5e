package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// documentNames are tried, in order, when a directory is given instead of a file.
var documentNames = []string{"htn.yaml", "htn.yml", "htn.json", "tree.yaml", "tree.yml", "tree.json"}

// ResolveDocument finds the task tree document for path.
// A file is returned as is; a directory is searched for a conventional
// document name, then for a YAML file named after the directory itself.
func ResolveDocument(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	for _, name := range documentNames {
		candidate := filepath.Join(path, name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		base := filepath.Base(abs)
		for _, ext := range []string{".yaml", ".yml", ".json"} {
			candidate := filepath.Join(path, base+ext)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("no task tree document found in %s", path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
