package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/callsy/packages/core/normalize"
	"github.com/fatih/color"
)

// formatValue truncates long values for display
func formatValue(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatRequest prints the normalized request, used for dry runs and verbose output.
func (f *ConsoleFormatter) FormatRequest(req *normalize.OutboundRequest) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(req.Method), req.URL.String())
	for _, h := range req.Headers {
		fmt.Fprintf(f.writer, "  %s: %s\n", cyan(h.Name), h.Value)
	}
	if req.Body != "" {
		fmt.Fprintf(f.writer, "  %s\n", formatValue(req.Body, 100))
	}
}

// FormatResponse prints a one-line summary of doc, plus headers when verbose.
func (f *ConsoleFormatter) FormatResponse(doc *Document, duration time.Duration, written []string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	status := doc.StatusCode
	switch {
	case strings.HasPrefix(status, "2"):
		status = green(status)
	case strings.HasPrefix(status, "3"):
		status = yellow(status)
	default:
		status = red(status)
	}

	fmt.Fprintf(f.writer, "%s %s\n", status, cyan(fmt.Sprintf("(%dms)", duration.Milliseconds())))

	if f.verbose {
		names := make([]string, 0, len(doc.Headers))
		for name := range doc.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(f.writer, "  %s: %s\n", name, doc.Headers[name])
		}
		fmt.Fprintf(f.writer, "  Body: %s\n", formatValue(doc.Body, 100))
	}

	for _, path := range written {
		fmt.Fprintf(f.writer, "Wrote %s\n", path)
	}
}

// FormatError prints err as a single "Error: <message>" line.
func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	msg := strings.Join(strings.Fields(err.Error()), " ")
	fmt.Fprintf(f.writer, "%s %s\n", red("Error:"), msg)
}
