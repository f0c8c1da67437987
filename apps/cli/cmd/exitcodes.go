package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/callsy/packages/core/document"
	"github.com/abdul-hamid-achik/callsy/packages/core/normalize"
	"github.com/abdul-hamid-achik/callsy/packages/http"
	"github.com/abdul-hamid-achik/callsy/packages/output"
	"github.com/abdul-hamid-achik/callsy/packages/persist"
)

// Exit codes for callsy CLI
const (
	// ExitSuccess indicates the response was written
	ExitSuccess = 0

	// ExitFailure indicates an error that fits no other category
	ExitFailure = 1

	// ExitInputError indicates an unreadable, malformed or invalid request document
	ExitInputError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitOutputError indicates the response could not be decoded or written
	ExitOutputError = 5

	// ExitDeclined indicates the user refused to overwrite an output file
	ExitDeclined = 6

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps an error returned by the root command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usageErr     *usageError
		cfgErr       *configError
		inputErr     *document.InputIOError
		malformedErr *document.MalformedInputError
		methodErr    *normalize.InvalidMethodError
		headerErr    *normalize.UnresolvableHeaderError
		invalidHdr   *normalize.InvalidHeaderError
		urlErr       *normalize.InvalidURLError
		transportErr *http.TransportError
		decodeErr    *output.BodyDecodeError
		outputErr    *persist.OutputIOError
		declinedErr  *persist.OverwriteDeclinedError
	)

	switch {
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &declinedErr):
		return ExitDeclined
	case errors.As(err, &inputErr),
		errors.As(err, &malformedErr),
		errors.Is(err, normalize.ErrConflictingBodySource),
		errors.As(err, &methodErr),
		errors.As(err, &headerErr),
		errors.As(err, &invalidHdr),
		errors.As(err, &urlErr):
		return ExitInputError
	case errors.As(err, &transportErr):
		return ExitNetworkError
	case errors.As(err, &decodeErr), errors.As(err, &outputErr):
		return ExitOutputError
	default:
		return ExitFailure
	}
}
