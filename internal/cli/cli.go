// Package cli implements the mmd2png command-line interface.
//
// The root command converts Mermaid diagram sources (.mmd) to PNG images by
// running the Mermaid CLI renderer. It accepts a single file or a directory:
//
//	mmd2png docs/diagrams/pipeline.mmd
//	mmd2png docs/diagrams --all --recursive --output-dir build/images
//
// Relative paths resolve against the project root, which defaults to the
// parent of the directory holding the executable and can be changed with
// --root.
//
// # Commands
//
//   - (root): probe the renderer, then convert a file or directory
//   - cache: inspect or clear the incremental render cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// Diagnostics go to stderr through charmbracelet/log; --verbose (-v) enables
// debug output. Per-file status lines go to stdout.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mmd2png/pkg/buildinfo"
	"github.com/matzehuels/mmd2png/pkg/mermaid"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mmd2png"

	// configFileName is looked up in the project root when --config is unset.
	configFileName = ".mmd2png.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives per-file status lines. Defaults to os.Stdout.
	Out io.Writer

	// NewRenderer builds the renderer for a binary name or path.
	NewRenderer func(binary string) mermaid.Renderer

	// Interactive enables the render spinner on stderr.
	Interactive bool
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		NewRenderer: func(binary string) mermaid.Renderer {
			return mermaid.NewCLI(binary)
		},
		Interactive: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.convertCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
