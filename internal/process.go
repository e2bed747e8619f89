package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Outcome is the final state of one candidate.
type Outcome string

const (
	OutcomeTagged      Outcome = "renamed-and-tagged"
	OutcomeRenamedOnly Outcome = "renamed-only"
	OutcomeUntouched   Outcome = "untouched"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
)

// Result is what one task reports to the aggregator. Candidate carries the
// path after rename; Original the path before.
type Result struct {
	Candidate   Candidate
	Original    string
	Guess       TimestampGuess
	Inferred    bool
	Outcome     Outcome
	RenameErr   error
	TagErr      error
	TagDuration time.Duration
}

// Observer is told about every finished candidate. Observers are called from
// a single goroutine, in completion order.
type Observer interface {
	OnResult(r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) OnResult(r Result) { f(r) }

// Summary counts outcomes of a run.
type Summary struct {
	Total     int
	Completed int
	Outcomes  map[Outcome]int
	Elapsed   time.Duration
}

// Options wires an Orchestrator. Extractor, Renamer and Writer are required.
type Options struct {
	Extractor *DateExtractor
	Renamer   *Renamer
	Writer    MetadataWriter
	// Limit bounds concurrent Writer calls; <= 0 means DefaultLimit().
	Limit     int
	Sink      ProgressSink
	Logger    *Logger
	Observers []Observer
	// DryRun plans renames and skips tag writes.
	DryRun bool
}

// Orchestrator runs infer, rename and tag for every candidate of a folder.
type Orchestrator struct {
	extractor *DateExtractor
	renamer   *Renamer
	writer    MetadataWriter
	limit     int
	sem       *semaphore.Weighted
	sink      ProgressSink
	logger    *Logger
	observers []Observer
	dryRun    bool
	cfg       *Config
}

// DefaultLimit leaves two cores free for inference and the rest of the system.
func DefaultLimit() int {
	return max(1, runtime.NumCPU()-2)
}

func NewOrchestrator(cfg *Config, opts Options) *Orchestrator {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit()
	}
	sink := opts.Sink
	if sink == nil {
		sink = &NopSink{}
	}
	return &Orchestrator{
		extractor: opts.Extractor,
		renamer:   opts.Renamer,
		writer:    opts.Writer,
		limit:     limit,
		sem:       semaphore.NewWeighted(int64(limit)),
		sink:      sink,
		logger:    opts.Logger,
		observers: opts.Observers,
		dryRun:    opts.DryRun,
		cfg:       cfg,
	}
}

// Limit returns the effective tag-write concurrency bound.
func (o *Orchestrator) Limit() int {
	return o.limit
}

// Process enumerates folder once and runs every media file through the
// pipeline. Only an enumeration failure is returned; per-file failures are in
// the Results handed to observers.
func (o *Orchestrator) Process(ctx context.Context, folder string) (Summary, error) {
	files, err := ScanMediaFiles(folder, o.cfg)
	if err != nil {
		o.sink.Close()
		return Summary{}, err
	}
	o.logger.Info("processing %d media files in %s (tag limit %d)", len(files), folder, o.limit)
	return o.ProcessCandidates(ctx, files), nil
}

// ProcessCandidates runs the pipeline for files, one goroutine per file, and
// closes the sink when all of them are done or skipped.
func (o *Orchestrator) ProcessCandidates(ctx context.Context, files []Candidate) Summary {
	started := time.Now()
	total := len(files)
	summary := Summary{Total: total, Outcomes: make(map[Outcome]int)}

	results := make(chan Result, total)
	var wg sync.WaitGroup
	for _, c := range files {
		wg.Add(1)
		go func(c Candidate) {
			defer wg.Done()
			results <- o.processOne(ctx, c)
		}(c)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		summary.Outcomes[r.Outcome]++
		for _, obs := range o.observers {
			obs.OnResult(r)
		}
		if r.Outcome == OutcomeSkipped {
			continue
		}
		completed++
		o.notify(completed, total)
	}

	o.notify(total, total)
	o.sink.Close()

	summary.Completed = completed
	summary.Elapsed = time.Since(started)
	return summary
}

func (o *Orchestrator) notify(completed, total int) {
	if o.sink.Closed() {
		return
	}
	o.sink.Update(completed, total)
}

func (o *Orchestrator) cancelled(ctx context.Context) bool {
	return ctx.Err() != nil || o.sink.Closed()
}

// processOne is the per-file pipeline: infer, then rename, then tag write.
// Cancellation is only checked before the first step.
func (o *Orchestrator) processOne(ctx context.Context, c Candidate) Result {
	r := Result{Candidate: c, Original: c.Path}
	if o.cancelled(ctx) {
		r.Outcome = OutcomeSkipped
		return r
	}

	guess, ok := o.extractor.Infer(c)
	if !ok {
		o.logger.Debug("%s: no timestamp inferred", c.Path)
		r.Outcome = OutcomeUntouched
		return r
	}
	r.Guess, r.Inferred = guess, true

	if o.dryRun {
		r.Candidate = withPath(c, o.renamer.Plan(c, guess.Time))
		r.Outcome = OutcomeTagged
		return r
	}

	newPath, err := o.renamer.Rename(c, guess.Time)
	if err != nil {
		o.logger.Error("%v", err)
		r.RenameErr = err
	}
	r.Candidate = withPath(c, newPath)

	// Scheduled writes run to completion even after cancellation.
	_ = o.sem.Acquire(context.Background(), 1)
	tagStarted := time.Now()
	err = o.writer.WriteTimestamp(r.Candidate.Path, guess.Time)
	r.TagDuration = time.Since(tagStarted)
	o.sem.Release(1)

	switch {
	case r.RenameErr != nil:
		r.TagErr = err
		r.Outcome = OutcomeFailed
	case err != nil:
		o.logger.Error("%v", err)
		r.TagErr = err
		r.Outcome = OutcomeRenamedOnly
	default:
		r.Outcome = OutcomeTagged
	}
	o.logger.Debug("%s -> %s (%s %s): %s", r.Original, r.Candidate.Name, guess.Source, guess.Time.Format(exifLayout), r.Outcome)
	return r
}

func withPath(c Candidate, path string) Candidate {
	c.Path = path
	c.Name = filepath.Base(path)
	return c
}

// String renders the summary as a one-line count of outcomes.
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d files: %d renamed and tagged, %d renamed only, %d untouched, %d failed, %d skipped",
		s.Completed, s.Total,
		s.Outcomes[OutcomeTagged], s.Outcomes[OutcomeRenamedOnly], s.Outcomes[OutcomeUntouched],
		s.Outcomes[OutcomeFailed], s.Outcomes[OutcomeSkipped])
}
