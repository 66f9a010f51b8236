// Package resume picks the file the upload step attaches: the first entry
// in a fixed directory whose extension is on the allow-list.
package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Locator resolves the resume file lazily, at the upload step's point of
// use. It implements engine.FileSource.
type Locator struct {
	Dir        string
	Extensions []string
}

func NewLocator(dir string, extensions []string) *Locator {
	return &Locator{Dir: dir, Extensions: extensions}
}

// Resolve returns the path of the first qualifying file in name order, so
// repeated runs against an unchanged directory pick the same file.
func (l *Locator) Resolve() (string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return "", fmt.Errorf("error reading resume directory %s: %w", l.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if l.allowed(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no file with extension %v in %s", l.Extensions, l.Dir)
	}

	sort.Strings(names)
	return filepath.Join(l.Dir, names[0]), nil
}

func (l *Locator) allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range l.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
