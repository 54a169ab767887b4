// internal/bundle/layout.go
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexFileName is the aggregate index inside a bundle's logs
// directory. It is rebuilt by Build and skipped by every per-file
// scan.
const IndexFileName = "logs.json"

// MarkerFileName is the empty file written at the output bundle root
// so GitHub Pages serves the bundle as-is instead of running it
// through Jekyll.
const MarkerFileName = ".nojekyll"

// requiredEntries lists what a source bundle must contain before a
// build will touch anything.
var requiredEntries = []struct {
	name string
	dir  bool
}{
	{"assets", true},
	{"index.html", false},
	{"robots.txt", false},
	{"logs", true},
}

// ValidateLayout checks that dir holds a complete viewer bundle. The
// first missing or mistyped entry fails the check, naming the path so
// the operator knows what to fix.
func ValidateLayout(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("source bundle %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source bundle %s is not a directory", dir)
	}

	for _, entry := range requiredEntries {
		path := filepath.Join(dir, entry.name)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("source bundle is missing %s: %w", path, err)
		}
		if entry.dir && !info.IsDir() {
			return fmt.Errorf("source bundle entry %s must be a directory", path)
		}
		if !entry.dir && info.IsDir() {
			return fmt.Errorf("source bundle entry %s must be a file", path)
		}
	}
	return nil
}

// ListLogFiles returns the names of the per-model log files under
// logsDir, sorted lexicographically. The aggregate index and anything
// that is not a .json file are skipped.
func ListLogFiles(logsDir string) ([]string, error) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return nil, fmt.Errorf("read logs directory %s: %w", logsDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == IndexFileName || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
