package mermaid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
)

const (
	// DefaultBinary is the renderer looked up on PATH when none is configured.
	DefaultBinary = "mmdc"

	// ProbeTimeout bounds the version probe run at startup.
	ProbeTimeout = 5 * time.Second

	// InstallHint is the command that installs the renderer.
	InstallHint = "npm install -g @mermaid-js/mermaid-cli"

	// ProjectURL points at the renderer's documentation.
	ProjectURL = "https://github.com/mermaid-js/mermaid-cli"
)

// Request describes one rendering job.
type Request struct {
	Input      string // path to the .mmd source
	Output     string // path of the PNG to write
	Scale      int    // forwarded verbatim as -s
	Background string // forwarded verbatim as --backgroundColor
}

// Args returns the renderer arguments for r.
func (r Request) Args() []string {
	return []string{
		"-i", r.Input,
		"-o", r.Output,
		"-s", strconv.Itoa(r.Scale),
		"--backgroundColor", r.Background,
	}
}

// Renderer turns Mermaid sources into images.
type Renderer interface {
	// Probe reports whether the renderer can be run and returns its version.
	Probe(ctx context.Context) (string, error)

	// Render produces req.Output from req.Input. It blocks until the
	// renderer exits.
	Render(ctx context.Context, req Request) error
}

// ExecFunc runs name with args and returns the captured output streams.
type ExecFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// RunCommand is the default ExecFunc. It waits for the child to exit, and the
// child is killed if ctx is cancelled first.
func RunCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}

// ExitError is returned (wrapped) when the renderer exits unsuccessfully.
type ExitError struct {
	Stderr string // captured standard error, trimmed
	Err    error  // error from the process runner
}

// Error returns the renderer's diagnostic text, falling back to the process
// error when the renderer printed nothing.
func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

// Unwrap returns the process error.
func (e *ExitError) Unwrap() error { return e.Err }

// CLI runs the Mermaid CLI binary.
type CLI struct {
	Binary       string        // executable name or path
	ProbeTimeout time.Duration // zero means ProbeTimeout
	Exec         ExecFunc      // nil means RunCommand
}

// NewCLI returns a renderer that runs binary, or DefaultBinary when empty.
func NewCLI(binary string) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLI{Binary: binary, ProbeTimeout: ProbeTimeout, Exec: RunCommand}
}

// Probe runs "<binary> --version" with a short timeout.
func (c *CLI) Probe(ctx context.Context) (string, error) {
	timeout := c.ProbeTimeout
	if timeout <= 0 {
		timeout = ProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := c.exec()(ctx, c.Binary, "--version")
	switch {
	case err == nil:
		return strings.TrimSpace(string(stdout)), nil
	case isNotFound(err):
		return "", mmerrors.Wrap(mmerrors.ErrCodeRendererNotFound, err, "'%s' not found", c.Binary)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "", mmerrors.Wrap(mmerrors.ErrCodeTimeout, err, "'%s --version' did not answer within %s", c.Binary, timeout)
	case ctx.Err() != nil:
		return "", fmt.Errorf("'%s --version' interrupted: %w", c.Binary, ctx.Err())
	default:
		return "", mmerrors.Wrap(mmerrors.ErrCodeRendererUnavailable,
			&ExitError{Stderr: strings.TrimSpace(string(stderr)), Err: err},
			"'%s --version' failed", c.Binary)
	}
}

// Render runs the renderer for req. A non-zero exit is not retried.
func (c *CLI) Render(ctx context.Context, req Request) error {
	_, stderr, err := c.exec()(ctx, c.Binary, req.Args()...)
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return mmerrors.Wrap(mmerrors.ErrCodeRendererNotFound, err, "'%s' not found", c.Binary)
	}
	return mmerrors.Wrap(mmerrors.ErrCodeRenderFailed,
		&ExitError{Stderr: strings.TrimSpace(string(stderr)), Err: err},
		"render %s", req.Input)
}

func (c *CLI) exec() ExecFunc {
	if c.Exec != nil {
		return c.Exec
	}
	return RunCommand
}

// isNotFound reports whether err means the executable does not exist, either
// because PATH lookup failed or because an explicit path is missing.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

var _ Renderer = (*CLI)(nil)
