package persist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
)

// DefaultMaxReadFailures is how many consecutive failed reads the confirmer
// tolerates before treating the answer as "no".
const DefaultMaxReadFailures = 3

type Decision int

const (
	Retry Decision = iota
	Yes
	No
)

func (d Decision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "retry"
	}
}

// Decide interprets one answer line. Trailing whitespace is ignored and
// matching is case-insensitive.
func Decide(line string) Decision {
	switch strings.ToLower(strings.TrimRightFunc(line, unicode.IsSpace)) {
	case "y", "yes":
		return Yes
	case "n", "no":
		return No
	default:
		return Retry
	}
}

// LineSource supplies answer lines to a Confirmer.
type LineSource interface {
	ReadLine() (string, error)
}

// ReaderSource reads lines from an io.Reader such as os.Stdin.
type ReaderSource struct {
	r *bufio.Reader
}

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReader(r)}
}

func (s *ReaderSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return line, nil
}

// OverwriteDeclinedError reports that the user refused to overwrite Path.
type OverwriteDeclinedError struct {
	Path string
}

func (e *OverwriteDeclinedError) Error() string {
	return fmt.Sprintf("exited due to inability to overwrite existing file %s", e.Path)
}

// Confirmer asks before existing output files are overwritten.
type Confirmer struct {
	source          LineSource
	prompt          io.Writer
	assumeYes       bool
	maxReadFailures int
}

type ConfirmerOption func(*Confirmer)

func NewConfirmer(source LineSource, opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{
		source:          source,
		prompt:          os.Stdout,
		maxReadFailures: DefaultMaxReadFailures,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithPromptWriter(w io.Writer) ConfirmerOption {
	return func(c *Confirmer) {
		c.prompt = w
	}
}

// WithAssumeYes answers every overwrite question with yes without prompting.
func WithAssumeYes(yes bool) ConfirmerOption {
	return func(c *Confirmer) {
		c.assumeYes = yes
	}
}

func WithMaxReadFailures(n int) ConfirmerOption {
	return func(c *Confirmer) {
		c.maxReadFailures = n
	}
}

// CheckOverwrite returns nil when path doesn't exist or the user agrees to
// overwrite it, and *OverwriteDeclinedError otherwise.
func (c *Confirmer) CheckOverwrite(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if c.assumeYes {
		return nil
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	failures := 0
	for {
		fmt.Fprintf(c.prompt, "%s %q already exists, would you like to overwrite [Y/N]: ", yellow("Output file"), path)

		line, err := c.source.ReadLine()
		if err != nil {
			fmt.Fprintln(c.prompt, "Failed to read line.")
			failures++
			if c.maxReadFailures > 0 && failures >= c.maxReadFailures {
				return &OverwriteDeclinedError{Path: path}
			}
			continue
		}
		failures = 0

		switch Decide(line) {
		case Yes:
			return nil
		case No:
			return &OverwriteDeclinedError{Path: path}
		}
	}
}
