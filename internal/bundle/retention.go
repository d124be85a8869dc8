package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix = "datagen-bundle-"
	fileSuffix = ".gz"
)

// GeneratePath returns dir/datagen-bundle-YYYYMMDD-HHMMSS.gz for t.
func GeneratePath(dir string, t time.Time) string {
	return filepath.Join(dir, filePrefix+t.Format("20060102-150405")+fileSuffix)
}

// List returns the bundle files in dir, newest first by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bundle directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	// Timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// Prune keeps the keep most recent bundles in dir and removes the rest.
// keep <= 0 disables pruning. Returns the removed paths.
func Prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) <= keep {
		return nil, nil
	}

	removed := paths[keep:]
	for _, p := range removed {
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("removing old bundle: %w", err)
		}
	}
	return removed, nil
}
