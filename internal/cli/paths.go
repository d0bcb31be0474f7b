package cli

import (
	"os"
	"path/filepath"
)

// cacheDir returns the cache directory using XDG standard (~/.cache/mmd2png/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultRoot returns the parent of the directory holding the executable,
// so a binary installed as <project>/bin/mmd2png resolves inputs against
// <project>.
func defaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// projectRoot returns the absolute project root: override when set,
// defaultRoot otherwise.
func projectRoot(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	return defaultRoot()
}

// resolvePath resolves p against root. Absolute paths are returned cleaned.
func resolvePath(root, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Abs(filepath.Join(root, p))
}

// isDir reports whether path is an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
