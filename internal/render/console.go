package render

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Console is the output handle passed into the renderer, the chat loop,
// and the picker. It wraps a writer so tests can capture output.
type Console struct {
	w io.Writer
}

// NewConsole wraps a writer.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Stdout returns a console on os.Stdout.
func Stdout() *Console {
	return NewConsole(os.Stdout)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

// Println writes a line.
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.w, args...)
}

// Prompt writes text without a trailing newline, for input prompts.
func (c *Console) Prompt(text string) {
	fmt.Fprint(c.w, text)
}

// Successf writes a success line with a leading check mark.
func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintln(c.w, styleSuccess.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Errorf writes a highlighted error line.
func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintln(c.w, styleError.Render(fmt.Sprintf(format, args...)))
}

// Warnf writes a warning line.
func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintln(c.w, styleWarning.Render(fmt.Sprintf(format, args...)))
}

// Dimf writes a de-emphasized line.
func (c *Console) Dimf(format string, args ...any) {
	fmt.Fprintln(c.w, styleDim.Render(fmt.Sprintf(format, args...)))
}

// Boldf writes an emphasized line.
func (c *Console) Boldf(format string, args ...any) {
	fmt.Fprintln(c.w, styleBold.Render(fmt.Sprintf(format, args...)))
}

// formatTimestamp compacts an RFC3339 service timestamp for display.
// Unparseable input is shown as-is.
func formatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return parsed.Local().Format("2006-01-02 15:04")
}
