package md2html

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
)

// Status is the outcome of one file in a batch.
type Status int

// Batch file statuses. The zero value is StatusNotAttempted so files the
// worker never reached need no bookkeeping.
const (
	StatusNotAttempted Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "not attempted"
	}
}

// FileResult is the outcome of one batch file.
type FileResult struct {
	SourcePath string
	OutputPath string
	Status     Status
	Err        error
	Duration   time.Duration
}

// Progress is sent after each attempted file. Index is zero-based.
type Progress struct {
	Index  int
	Total  int
	Result FileResult
}

// BatchRequest describes a batch. It is copied when the batch starts, so
// later changes by the caller do not affect a running batch.
type BatchRequest struct {
	Files     []string
	OutputDir string
	Theme     Theme
	Options   ExportOptions
	Settings  ExportSettings
}

// BatchReport summarizes a finished batch, one result per requested file
// in request order. Canceled is set when the worker stopped before the last
// file.
type BatchReport struct {
	Results  []FileResult
	Canceled bool
}

// Succeeded returns the number of files converted.
func (r BatchReport) Succeeded() int { return r.count(StatusSucceeded) }

// Failed returns the number of files attempted that failed.
func (r BatchReport) Failed() int { return r.count(StatusFailed) }

// NotAttempted returns the number of files skipped after cancellation.
func (r BatchReport) NotAttempted() int { return r.count(StatusNotAttempted) }

func (r BatchReport) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Err combines the failures, or returns nil. Files not attempted are not
// failures.
func (r BatchReport) Err() error {
	var err error
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			err = multierr.Append(err, fmt.Errorf("%s: %w", res.SourcePath, res.Err))
		}
	}
	return err
}

// fileConverter converts one file. Converter.Convert in production.
type fileConverter func(ctx context.Context, req Request) (*Result, error)

// Batch is a running batch conversion.
type Batch struct {
	progress chan Progress
	done     chan struct{}
	ctx      context.Context
	canceled atomic.Bool
	report   BatchReport
}

// StartBatch starts one worker goroutine that converts the files in order.
// Cancel, or canceling ctx, stops the batch between files; a conversion in
// flight always completes.
func (c *Converter) StartBatch(ctx context.Context, req BatchRequest) *Batch {
	return startBatch(ctx, req, c.Convert)
}

func startBatch(ctx context.Context, req BatchRequest, convert fileConverter) *Batch {
	snapshot := req
	snapshot.Files = slices.Clone(req.Files)
	if snapshot.Theme.Dark != nil {
		dark := *snapshot.Theme.Dark
		snapshot.Theme.Dark = &dark
	}

	b := &Batch{
		// Buffered for every file so the worker never waits on a slow reader.
		progress: make(chan Progress, len(snapshot.Files)),
		done:     make(chan struct{}),
		ctx:      ctx,
	}
	go b.run(snapshot, convert)
	return b
}

// Progress returns the channel of per-file updates. It is closed when the
// worker ends.
func (b *Batch) Progress() <-chan Progress {
	return b.progress
}

// Cancel asks the worker to stop before the next file.
func (b *Batch) Cancel() {
	b.canceled.Store(true)
}

// Done is closed when the worker ends.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the worker ends and returns the report.
func (b *Batch) Wait() BatchReport {
	<-b.done
	return b.report
}

func (b *Batch) stopRequested() bool {
	return b.canceled.Load() || b.ctx.Err() != nil
}

func (b *Batch) run(req BatchRequest, convert fileConverter) {
	defer close(b.done)
	defer close(b.progress)

	total := len(req.Files)
	results := make([]FileResult, total)
	for i, path := range req.Files {
		results[i].SourcePath = path
	}

	// The in-flight file must finish even when the caller cancels ctx.
	convCtx := context.WithoutCancel(b.ctx)

	stopped := false
	for i, path := range req.Files {
		if b.stopRequested() {
			stopped = true
			break
		}

		start := time.Now()
		res, err := convert(convCtx, Request{
			SourcePath: path,
			OutputDir:  req.OutputDir,
			Theme:      req.Theme,
			Options:    req.Options,
			Settings:   req.Settings,
		})

		fr := FileResult{SourcePath: path, Duration: time.Since(start)}
		if err != nil {
			fr.Status = StatusFailed
			fr.Err = err
		} else {
			fr.Status = StatusSucceeded
			fr.OutputPath = res.Path
		}
		results[i] = fr
		b.progress <- Progress{Index: i, Total: total, Result: fr}
	}

	b.report = BatchReport{Results: results, Canceled: stopped}
}
