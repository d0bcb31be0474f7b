package convert

import (
	"path/filepath"
	"strings"

	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
)

const (
	// DefaultScale is the scale factor forwarded to the renderer.
	DefaultScale = 4

	// DefaultBackground is the background color forwarded to the renderer.
	DefaultBackground = "white"

	// OutputExt is the extension of rendered images.
	OutputExt = ".png"
)

// Options controls how sources are rendered.
type Options struct {
	Scale       int    // renderer scale factor, passed through verbatim
	Background  string // color name or hex, passed through verbatim
	OutputDir   string // when set, outputs are written under this directory
	Recursive   bool   // directory scans descend into subdirectories
	Incremental bool   // skip sources whose last render is still current
}

// DefaultOptions returns the options used when nothing is configured.
// Converters never substitute defaults themselves: a zero scale or an empty
// background reaches the renderer as given.
func DefaultOptions() Options {
	return Options{Scale: DefaultScale, Background: DefaultBackground}
}

// OutputPath returns where the image for input is written: <stem>.png next
// to the input, or inside outputDir when it is non-empty.
func OutputPath(input, outputDir string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

// IsSource reports whether path has the Mermaid source extension.
func IsSource(path string) bool {
	return filepath.Ext(path) == mmerrors.SourceExt
}
