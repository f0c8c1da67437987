package document

import (
	"bytes"
	"fmt"
)

// MalformedInputError reports the first syntactic or structural problem in a
// request document. Line and Column are 1-based.
type MalformedInputError struct {
	Line   int
	Column int
	Msg    string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("unable to decode request document at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// InputIOError reports a file that could not be opened or read. What names the
// file's role ("input file", "body file").
type InputIOError struct {
	What string
	Path string
	Err  error
}

func (e *InputIOError) Error() string {
	return fmt.Sprintf("failed to read %s %s: %v", e.What, e.Path, e.Err)
}

func (e *InputIOError) Unwrap() error {
	return e.Err
}

// malformedAt builds a MalformedInputError for a byte offset into data.
func malformedAt(data []byte, offset int, format string, args ...any) *MalformedInputError {
	line, col := position(data, offset)
	return &MalformedInputError{
		Line:   line,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := offset - bytes.LastIndexByte(prefix, '\n')
	return line, col
}
