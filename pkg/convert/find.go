package convert

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindFiles lists the Mermaid sources in dir. With recursive set every
// subdirectory is searched too. Results are sorted component by component,
// so "a/z.mmd" sorts before "a-b/a.mmd" and the order does not depend on the
// platform's path separator.
func FindFiles(dir string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsSource(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	} else {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsSource(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(files, comparePaths)
	return files, nil
}

// comparePaths orders paths lexically by their components.
func comparePaths(a, b string) int {
	return slices.Compare(
		strings.Split(filepath.ToSlash(a), "/"),
		strings.Split(filepath.ToSlash(b), "/"),
	)
}
