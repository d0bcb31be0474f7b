package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mmd2png/pkg/convert"
	mmerrors "github.com/matzehuels/mmd2png/pkg/errors"
	"github.com/matzehuels/mmd2png/pkg/mermaid"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary actions
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - errors
	colorBlue  = lipgloss.Color("75")  // Light blue - links
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess   = "✓"
	iconError     = "✗"
	iconInfo      = "›"
	iconArrow     = "→"
	iconUnchanged = "–"
)

// =============================================================================
// Console
// =============================================================================

// console writes human-readable status lines.
type console struct {
	w io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) line(icon, msg string) {
	fmt.Fprintln(c.w, "  "+icon+" "+msg)
}

func (c *console) title(format string, args ...any) {
	fmt.Fprintln(c.w, StyleTitle.Render(fmt.Sprintf(format, args...)))
}

func (c *console) keyValue(key, value string) {
	fmt.Fprintln(c.w, "  "+StyleDim.Render(key+":")+" "+StyleValue.Render(value))
}

func (c *console) success(format string, args ...any) {
	c.line(styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func (c *console) failure(format string, args ...any) {
	c.line(styleIconError.Render(iconError), fmt.Sprintf(format, args...))
}

func (c *console) info(format string, args ...any) {
	c.line(styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// installHint prints how to get the renderer.
func (c *console) installHint() {
	c.info("Install: %s", styleCommand.Render(mermaid.InstallHint))
	c.info("See: %s", StyleLink.Render(mermaid.ProjectURL))
}

// =============================================================================
// Reporter
// =============================================================================

// Found prints the number of sources a directory scan discovered.
func (c *console) Found(dir string, count int) {
	c.info("Found %d %s file(s)", count, mmerrors.SourceExt)
}

// Converted prints "name.mmd → name.png".
func (c *console) Converted(input, output string) {
	c.success("%s %s %s", filepath.Base(input), StyleDim.Render(iconArrow), filepath.Base(output))
}

// Unchanged prints a skipped source in incremental mode.
func (c *console) Unchanged(input, output string) {
	c.line(StyleDim.Render(iconUnchanged), filepath.Base(input)+" "+StyleDim.Render("(unchanged)"))
}

// Failed prints a diagnostic chosen by the error's category. Environment
// failures carry the install hint; conversion failures show the renderer's
// own output next to the file name.
func (c *console) Failed(path string, err error) {
	code := mmerrors.GetCode(err)
	switch {
	case code == mmerrors.ErrCodeNoInputFiles:
		c.info("%s", mmerrors.UserMessage(err))
	case code.Category() == mmerrors.CategoryEnvironment:
		c.failure("%s. Install: %s", mmerrors.UserMessage(err), mermaid.InstallHint)
	case code.Category() == mmerrors.CategoryConversion:
		c.failure("%s: %s", filepath.Base(path), renderDetail(err))
	default:
		c.failure("%s", mmerrors.UserMessage(err))
	}
}

// renderDetail returns the renderer's own diagnostic for err.
func renderDetail(err error) string {
	var exitErr *mermaid.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Error()
	}
	return mmerrors.UserMessage(err)
}

var _ convert.Reporter = (*console)(nil)
