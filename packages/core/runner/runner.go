package runner

import (
	"context"
	"log/slog"

	"github.com/abdul-hamid-achik/callsy/packages/core/document"
	"github.com/abdul-hamid-achik/callsy/packages/core/normalize"
	"github.com/abdul-hamid-achik/callsy/packages/history"
	"github.com/abdul-hamid-achik/callsy/packages/http"
	"github.com/abdul-hamid-achik/callsy/packages/output"
	"github.com/abdul-hamid-achik/callsy/packages/persist"
)

// OverwriteChecker approves or refuses writing over an existing path.
type OverwriteChecker interface {
	CheckOverwrite(path string) error
}

// Recorder stores a summary of each executed request.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

type Runner struct {
	sender   http.Sender
	checker  OverwriteChecker
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Runner)

// WithRecorder records every executed request.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(sender http.Sender, checker OverwriteChecker, opts ...Option) *Runner {
	r := &Runner{
		sender:  sender,
		checker: checker,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type Options struct {
	RequestFile string
	OutputFile  string
	// BodyOutputFile receives the resolved request body when set.
	BodyOutputFile string
	// DryRun stops after normalization: nothing is sent or written.
	DryRun bool
}

type Result struct {
	Request  *normalize.OutboundRequest
	Response *http.InboundResponse
	Document *output.Document
	Written  []string
}

// Run executes the request described by opts.RequestFile and writes the
// output artifacts. Any error aborts the run before output files change.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if !opts.DryRun {
		if err := r.checkOutputs(opts); err != nil {
			return nil, err
		}
	}

	spec, err := document.Load(opts.RequestFile)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("decoded request document", "file", opts.RequestFile, "headers", len(spec.Headers))

	req, err := normalize.Normalize(spec)
	if err != nil {
		return nil, err
	}

	result := &Result{Request: req}
	if opts.DryRun {
		return result, nil
	}

	resp, err := http.Execute(ctx, r.sender, req)
	if err != nil {
		return nil, err
	}
	result.Response = resp

	doc, err := output.Project(resp)
	if err != nil {
		return nil, err
	}
	result.Document = doc

	written, err := r.write(opts, req, doc)
	if err != nil {
		return nil, err
	}
	result.Written = written

	r.record(ctx, opts, req, resp)

	return result, nil
}

func (r *Runner) checkOutputs(opts Options) error {
	if err := r.checker.CheckOverwrite(opts.OutputFile); err != nil {
		return err
	}
	if opts.BodyOutputFile != "" {
		if err := r.checker.CheckOverwrite(opts.BodyOutputFile); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) write(opts Options, req *normalize.OutboundRequest, doc *output.Document) ([]string, error) {
	stager := persist.NewStager()
	defer stager.Discard()

	if err := stager.Stage(opts.OutputFile, output.Marshal(doc)); err != nil {
		return nil, err
	}
	if opts.BodyOutputFile != "" {
		if err := stager.Stage(opts.BodyOutputFile, []byte(req.Body)); err != nil {
			return nil, err
		}
	}

	written, err := stager.Commit()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("wrote output", "files", written)
	return written, nil
}

// record is best effort: the response is already on disk.
func (r *Runner) record(ctx context.Context, opts Options, req *normalize.OutboundRequest, resp *http.InboundResponse) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.Record(ctx, &history.Entry{
		RequestFile: opts.RequestFile,
		Method:      req.Method,
		URL:         req.URL.String(),
		StatusCode:  resp.StatusCode,
		DurationMs:  resp.DurationMs(),
		OutputFile:  opts.OutputFile,
	})
	if err != nil {
		r.logger.Warn("failed to record history", "error", err)
	}
}
