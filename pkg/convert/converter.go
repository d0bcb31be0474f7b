package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mmd2png/pkg/cache"
	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
	"github.com/matzehuels/mmd2png/pkg/mermaid"
)

// Outcome is the result of converting one file.
type Outcome int

const (
	OutcomeFailed    Outcome = iota // input rejected or renderer failed
	OutcomeConverted                // renderer wrote the output
	OutcomeUnchanged                // incremental run found a current output
)

// OK reports whether the outcome counts as a success.
func (o Outcome) OK() bool { return o != OutcomeFailed }

// BatchResult aggregates a directory conversion.
type BatchResult struct {
	Found     int   // sources discovered
	Converted int   // rendered in this run
	Unchanged int   // skipped as current (incremental only)
	Failed    int   // rejected or failed to render
	Err       error // set when the directory itself could not be processed
}

// Succeeded returns the number of sources that ended in a success.
func (r BatchResult) Succeeded() int { return r.Converted + r.Unchanged }

// OK reports whether sources were found and every one of them succeeded.
func (r BatchResult) OK() bool {
	return r.Err == nil && r.Found > 0 && r.Succeeded() == r.Found
}

// Converter renders Mermaid sources one at a time.
//
// A Converter holds no per-run state and may be reused, but it is not meant
// to be shared between goroutines: renders are issued sequentially.
type Converter struct {
	Renderer mermaid.Renderer
	Cache    cache.Cache
	Reporter Reporter
	Logger   *log.Logger
}

// NewConverter creates a converter.
// If c is nil, a NullCache is used. If rep is nil, progress is discarded.
func NewConverter(r mermaid.Renderer, c cache.Cache, rep Reporter, logger *log.Logger) *Converter {
	if c == nil {
		c = cache.NewNullCache()
	}
	if rep == nil {
		rep = NopReporter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{
		Renderer: r,
		Cache:    c,
		Reporter: rep,
		Logger:   logger,
	}
}

// ConvertFile renders a single source and reports whether it succeeded.
// Missing paths and files without the .mmd extension fail before the
// renderer is invoked.
func (c *Converter) ConvertFile(ctx context.Context, path string, opts Options) bool {
	return c.convertFile(ctx, path, opts).OK()
}

// ConvertDirectory renders every source in dir. Each file is attempted even
// after a failure; the batch is OK only when all of them succeed. With an
// output directory, each source's path relative to dir is kept below it, so
// sources sharing a name in different subdirectories get distinct images.
func (c *Converter) ConvertDirectory(ctx context.Context, dir string, opts Options) BatchResult {
	var res BatchResult

	if err := mmerrors.ValidateDirectory(dir); err != nil {
		res.Err = err
		c.Reporter.Failed(dir, err)
		return res
	}

	files, err := FindFiles(dir, opts.Recursive)
	if err != nil {
		res.Err = mmerrors.Wrap(mmerrors.ErrCodeFileNotFound, err, "scan %s", dir)
		c.Reporter.Failed(dir, res.Err)
		return res
	}
	if len(files) == 0 {
		res.Err = mmerrors.New(mmerrors.ErrCodeNoInputFiles, "No %s files in %s", mmerrors.SourceExt, dir)
		c.Reporter.Failed(dir, res.Err)
		return res
	}

	res.Found = len(files)
	c.Reporter.Found(dir, len(files))
	c.Logger.Debug("scanned directory", "dir", dir, "recursive", opts.Recursive, "files", len(files))

	start := time.Now()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		fopts := opts
		if opts.OutputDir != "" {
			fopts.OutputDir = mirrorDir(dir, f, opts.OutputDir)
		}
		switch c.convertFile(ctx, f, fopts) {
		case OutcomeConverted:
			res.Converted++
		case OutcomeUnchanged:
			res.Unchanged++
		default:
			res.Failed++
		}
	}

	c.Logger.Debug("converted directory",
		"dir", dir,
		"converted", res.Converted,
		"unchanged", res.Unchanged,
		"failed", res.Failed,
		"duration", time.Since(start).Round(time.Millisecond))
	return res
}

// mirrorDir returns the directory under outputDir that corresponds to the
// directory holding file within root.
func mirrorDir(root, file, outputDir string) string {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return outputDir
	}
	return filepath.Join(outputDir, rel)
}

func (c *Converter) convertFile(ctx context.Context, path string, opts Options) Outcome {
	if err := mmerrors.ValidateSource(path); err != nil {
		c.Reporter.Failed(path, err)
		return OutcomeFailed
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			err = mmerrors.Wrap(mmerrors.ErrCodeInternal, err, "create output directory %s", opts.OutputDir)
			c.Reporter.Failed(path, err)
			return OutcomeFailed
		}
	}

	req := mermaid.Request{
		Input:      path,
		Output:     OutputPath(path, opts.OutputDir),
		Scale:      opts.Scale,
		Background: opts.Background,
	}

	var key string
	if opts.Incremental {
		key = c.renderKey(req)
		if key != "" && c.isCurrent(ctx, key, req.Output) {
			c.Reporter.Unchanged(req.Input, req.Output)
			return OutcomeUnchanged
		}
	}

	c.Logger.Debug("rendering", "input", req.Input, "output", req.Output, "scale", req.Scale, "background", req.Background)
	start := time.Now()
	if err := c.Renderer.Render(ctx, req); err != nil {
		c.Reporter.Failed(path, err)
		return OutcomeFailed
	}
	c.Logger.Debug("rendered", "output", req.Output, "duration", time.Since(start).Round(time.Millisecond))

	if key != "" {
		c.record(ctx, key, req.Output)
	}
	c.Reporter.Converted(req.Input, req.Output)
	return OutcomeConverted
}

// renderKey returns the cache key for req, or "" when the source cannot be read.
func (c *Converter) renderKey(req mermaid.Request) string {
	src, err := os.ReadFile(req.Input)
	if err != nil {
		c.Logger.Debug("incremental check skipped", "input", req.Input, "err", err)
		return ""
	}
	return cache.RenderKey(src, req.Output, req.Scale, req.Background)
}

// isCurrent reports whether the cache holds key and output still matches the
// image recorded with it.
func (c *Converter) isCurrent(ctx context.Context, key, output string) bool {
	want, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.Logger.Debug("cache read failed", "err", err)
		return false
	}
	if !hit {
		return false
	}
	got, err := hashFile(output)
	if err != nil {
		return false
	}
	return got == string(want)
}

// record stores the hash of output under key. Cache failures never fail a
// conversion.
func (c *Converter) record(ctx context.Context, key, output string) {
	sum, err := hashFile(output)
	if err != nil {
		c.Logger.Debug("not recording render", "output", output, "err", err)
		return
	}
	if err := c.Cache.Set(ctx, key, []byte(sum), 0); err != nil {
		c.Logger.Debug("cache write failed", "err", err)
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return cache.Hash(data), nil
}
