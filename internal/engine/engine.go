// Package engine is the single entry point that turns a load request and a
// contract into a cleaned table plus its metadata.
//
// Run drives the loading manager, the cleaning pipeline and the metadata
// computer in that order. It never panics on bad input and never returns a
// partial result: the error, when present, is always a *Failure tagged with
// the stage that produced it.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JonMunkholm/gdpdash/internal/clean"
	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/logging"
	"github.com/JonMunkholm/gdpdash/internal/metadata"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

// Stage names carried by Failure.
const (
	StageLoad     = loader.StageLoad
	StageClean    = "clean"
	StageMetadata = "metadata"
)

// Loader is what the engine needs from the loading manager.
type Loader interface {
	Load(req loader.Request) (*table.Table, error)
}

// Reshaper transforms a freshly loaded table before cleaning, e.g. melting a
// wide year-per-column layout into rows.
type Reshaper func(t *table.Table) (*table.Table, error)

// Result is a successful run. The caller owns the table and must treat both
// it and the metadata as read-only once shared.
type Result struct {
	Table    *table.Table
	Metadata metadata.Record
	Report   *clean.Report
	Source   string
	Format   string
}

// Engine runs requests. It holds no per-run state, so one Engine may serve
// concurrent runs on independent requests.
type Engine struct {
	loader   Loader
	pipeline *clean.Pipeline
	reshape  Reshaper
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Context IDs are added per run.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReshape installs a transform applied between loading and cleaning.
func WithReshape(fn Reshaper) Option {
	return func(e *Engine) { e.reshape = fn }
}

// New builds an engine. A nil pipeline means clean.Default().
func New(l Loader, pipeline *clean.Pipeline, opts ...Option) *Engine {
	e := &Engine{loader: l, pipeline: pipeline, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		e.pipeline = clean.Default()
	}
	e.pipeline.WithLogger(e.logger)
	return e
}

// Run loads, cleans and describes the dataset named by req. ctx only carries
// logging identifiers; wrap the call in a deadline of your own if needed.
func (e *Engine) Run(ctx context.Context, req loader.Request, c *contract.Contract) (*Result, error) {
	start := time.Now()
	logger := logging.Attach(ctx, e.logger).With("source", req.Source(), "format", req.Format())

	res, err := e.run(req, c)
	if err != nil {
		f := asFailure(err)
		logger.Warn("run failed",
			"stage", f.Stage,
			"kind", f.Kind,
			"detail", f.Detail,
			"duration", time.Since(start),
		)
		return nil, f
	}

	logger.Info("run completed",
		"rows", res.Metadata.RowCount,
		"columns", res.Metadata.ColumnCount,
		"removed_rows", res.Report.RemovedRows,
		"duplicate_rows", res.Report.DuplicateRows,
		"duration", time.Since(start),
	)
	return res, nil
}

func (e *Engine) run(req loader.Request, c *contract.Contract) (*Result, error) {
	if e.loader == nil {
		return nil, classify(StageLoad, errors.New("engine has no loader"))
	}
	raw, err := e.loader.Load(req)
	if err != nil {
		return nil, classify(StageLoad, err)
	}

	if c == nil {
		return nil, classify(StageClean, &contract.ContractViolationError{Err: errors.New("no contract supplied")})
	}
	if err := c.Check(); err != nil {
		return nil, classify(StageClean, &contract.ContractViolationError{Contract: c.Name, Err: err})
	}

	if e.reshape != nil {
		raw, err = e.reshape(raw)
		if err != nil {
			return nil, classify(StageClean, &clean.StepError{Step: "reshape", Err: err})
		}
	}

	cleaned, rep, err := e.pipeline.Apply(raw, c)
	if err != nil {
		return nil, classify(StageClean, err)
	}

	md, err := metadata.Compute(cleaned)
	if err != nil {
		return nil, classify(StageMetadata, err)
	}

	source, format := req.Source(), req.Format()
	if format == loader.FormatAuto {
		if f, err := loader.FormatForPath(source); err == nil {
			format = f
		}
	}
	return &Result{Table: cleaned, Metadata: md, Report: rep, Source: source, Format: format}, nil
}
