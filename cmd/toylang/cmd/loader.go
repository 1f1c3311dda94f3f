package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fsLoader resolves an `import a::b::c` path to a file `a/b/c.toy` under
// one of its search directories -- the filesystem policy the Module
// Integrator deliberately leaves to its caller rather than baking in.
type fsLoader struct {
	searchDirs []string
}

func newFSLoader(packageRoot string, importPaths []string) *fsLoader {
	dirs := make([]string, 0, len(importPaths)+1)
	if packageRoot != "" {
		dirs = append(dirs, packageRoot)
	}
	dirs = append(dirs, importPaths...)
	if len(dirs) == 0 {
		dirs = append(dirs, ".")
	}
	return &fsLoader{searchDirs: dirs}
}

// Load implements module.SourceLoader.
func (l *fsLoader) Load(path string) (string, error) {
	rel := filepath.Join(strings.Split(path, "::")...) + ".toy"
	for _, dir := range l.searchDirs {
		full := filepath.Join(dir, rel)
		content, err := os.ReadFile(full)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("module %q not found under %v (looked for %s)", path, l.searchDirs, rel)
}
