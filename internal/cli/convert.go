package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mmd2png/pkg/cache"
	"github.com/matzehuels/mmd2png/pkg/convert"
	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
	"github.com/matzehuels/mmd2png/pkg/mermaid"
)

// ErrConversionFailed is returned when the renderer is unavailable or any
// requested conversion failed. Details have already been printed, so callers
// should exit non-zero without repeating them.
var ErrConversionFailed = errors.New("conversion failed")

// convertOpts holds the command-line flags for the root command.
type convertOpts struct {
	all         bool   // treat input as a directory
	scale       int    // renderer scale factor
	background  string // renderer background color
	recursive   bool   // search subdirectories (with --all)
	outputDir   string // write every output here
	root        string // project root override
	renderer    string // renderer binary name or path
	incremental bool   // skip sources whose last render is current
	config      string // explicit config file
	verbose     bool   // debug logging
}

// convertCommand creates the root command, which converts a file or a
// directory of Mermaid sources.
func (c *CLI) convertCommand() *cobra.Command {
	defaults := convert.DefaultOptions()
	opts := convertOpts{
		scale:      defaults.Scale,
		background: defaults.Background,
		renderer:   mermaid.DefaultBinary,
	}

	cmd := &cobra.Command{
		Use:   "mmd2png <input>",
		Short: "Convert Mermaid (.mmd) files to PNG images",
		Long: `mmd2png converts Mermaid diagram sources to PNG images using the Mermaid CLI (mmdc).

The input is a .mmd file or, with --all, a directory of them. Relative paths
are resolved against the project root. In directory mode --output-dir keeps
each file's subdirectory, so docs/a/flow.mmd is written to <output-dir>/a/flow.png.

An input named like a subcommand (cache, completion) must be written as a
path, for example ./cache.`,
		Example: `  # Convert all diagrams in a directory
  mmd2png docs/flowchart_images --all

  # Convert a single file
  mmd2png docs/flowchart_images/pipeline_overview.mmd

  # Custom scale and background
  mmd2png docs/flowchart_images --all --scale 2 --background transparent`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{"mmd"}, cobra.ShellCompDirectiveFilterFileExt
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], &opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	cmd.Flags().BoolVar(&opts.all, "all", false, "convert all .mmd files in the given directory")
	cmd.Flags().IntVar(&opts.scale, "scale", opts.scale, "scale factor for PNG")
	cmd.Flags().StringVar(&opts.background, "background", opts.background, "background color")
	cmd.Flags().BoolVar(&opts.recursive, "recursive", false, "recurse into subdirectories (with --all)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "output directory (default: same as input)")
	cmd.Flags().StringVar(&opts.root, "root", "", "project root for relative paths (default: parent of the executable's directory)")
	cmd.Flags().StringVar(&opts.renderer, "renderer", opts.renderer, "Mermaid CLI binary name or path")
	cmd.Flags().BoolVar(&opts.incremental, "incremental", false, "skip diagrams whose PNG is up to date")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default: <root>/"+configFileName+")")

	_ = cmd.MarkFlagDirname("output-dir")
	_ = cmd.MarkFlagDirname("root")
	_ = cmd.MarkFlagFilename("config", "toml")

	return cmd
}

// runConvert probes the renderer and converts the resolved input.
func (c *CLI) runConvert(cmd *cobra.Command, input string, opts *convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	root, err := projectRoot(opts.root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	path, required := configPath(opts.config, root)
	cfg, md, err := loadConfig(path, required)
	if err != nil {
		return err
	}
	applyConfig(cmd.Flags(), cfg, md, opts, logger)

	inputPath, err := resolvePath(root, input)
	if err != nil {
		return err
	}
	var outputDir string
	if opts.outputDir != "" {
		if outputDir, err = resolvePath(root, opts.outputDir); err != nil {
			return err
		}
	}
	logger.Debug("resolved paths", "root", root, "input", inputPath, "output_dir", outputDir)

	con := newConsole(c.Out)
	con.title("Mermaid %s PNG", iconArrow)
	con.keyValue("Input", inputPath)

	renderer := c.NewRenderer(opts.renderer)
	if c.Interactive {
		renderer = spinnerRenderer{inner: renderer, w: os.Stderr}
	}

	version, err := renderer.Probe(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		con.failure("%s", probeDetail(err))
		con.installHint()
		return ErrConversionFailed
	}
	logger.Debug("renderer available", "binary", opts.renderer, "version", version)

	store, err := newCache(opts.incremental, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := convert.NewConverter(renderer, store, con, logger)
	copts := convert.Options{
		Scale:       opts.scale,
		Background:  opts.background,
		OutputDir:   outputDir,
		Recursive:   opts.recursive,
		Incremental: opts.incremental,
	}

	prog := newProgress(logger)
	var ok bool
	if opts.all || isDir(inputPath) {
		res := conv.ConvertDirectory(ctx, inputPath, copts)
		ok = res.OK()
		if res.Found > 0 {
			prog.done(fmt.Sprintf("Converted %d of %d file(s)", res.Succeeded(), res.Found))
		}
	} else {
		ok = conv.ConvertFile(ctx, inputPath, copts)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if !ok {
		return ErrConversionFailed
	}
	return nil
}

// probeDetail describes a failed renderer probe.
func probeDetail(err error) string {
	msg := mmerrors.UserMessage(err)
	var exitErr *mermaid.ExitError
	if errors.As(err, &exitErr) && exitErr.Stderr != "" {
		msg += ": " + exitErr.Stderr
	}
	return msg
}

// newCache returns the render cache: a file cache for incremental runs and a
// null cache otherwise.
func newCache(incremental bool, logger *log.Logger) (cache.Cache, error) {
	if !incremental {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Warn("incremental mode disabled: no cache directory", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return fc, nil
}
