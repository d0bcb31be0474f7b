package errors

import (
	"os"
	"path/filepath"
)

// SourceExt is the file extension of Mermaid diagram sources.
const SourceExt = ".mmd"

// ValidateSource checks that path names an existing Mermaid source file.
//
// The extension comparison is exact: "diagram.MMD" is rejected, matching how
// the directory scan selects files.
func ValidateSource(path string) error {
	if _, err := os.Stat(path); err != nil {
		return Wrap(ErrCodeFileNotFound, err, "Not found: %s", path)
	}
	if filepath.Ext(path) != SourceExt {
		return New(ErrCodeInvalidExtension, "Not a %s file: %s", SourceExt, path)
	}
	return nil
}

// ValidateDirectory checks that path names an existing directory.
func ValidateDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return Wrap(ErrCodeFileNotFound, err, "Directory not found: %s", path)
	}
	if !info.IsDir() {
		return New(ErrCodeNotADirectory, "Directory not found: %s", path)
	}
	return nil
}
