// Package fetcher runs independent external queries with a fixed cap on the
// number of processes in flight.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/syspkg"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultConcurrency is the number of external processes allowed at once
	DefaultConcurrency = 5
	// DefaultTimeout bounds a single external query
	DefaultTimeout = 2 * time.Minute
)

// ErrAllFailed is returned by Results.Err when every task failed
var ErrAllFailed = errors.New("all fetch tasks failed")

// Task is one keyed external query
type Task struct {
	Key     string
	Command syspkg.Command
}

// Outcome is the output of one task, or its failure
type Outcome struct {
	Stdout   string
	Err      error
	Duration time.Duration
}

// Results maps task keys to outcomes
type Results map[string]Outcome

// Succeeded returns successful outcomes' keys, sorted
func (r Results) Succeeded() []string {
	return r.keys(func(o Outcome) bool { return o.Err == nil })
}

// Failed returns failed outcomes' keys, sorted
func (r Results) Failed() []string {
	return r.keys(func(o Outcome) bool { return o.Err != nil })
}

func (r Results) keys(match func(Outcome) bool) []string {
	keys := make([]string, 0, len(r))
	for k, o := range r {
		if match(o) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Err returns nil when at least one task succeeded (or there were none), and
// otherwise an error wrapping ErrAllFailed and the first failure by key.
func (r Results) Err() error {
	if len(r) == 0 {
		return nil
	}
	failed := r.Failed()
	if len(failed) < len(r) {
		return nil
	}
	return fmt.Errorf("%w: %d of %d: %w", ErrAllFailed, len(failed), len(r), r[failed[0]].Err)
}

// Options configures a Fetcher
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// OnDone is called after each task finishes, from the worker goroutine
	OnDone func(key string, outcome Outcome)
}

// Fetcher executes tasks through a CommandRunner with bounded concurrency
type Fetcher struct {
	runner helpers.CommandRunner
	opts   Options
	logger *zerolog.Logger
}

// New creates a Fetcher. Zero option values fall back to the defaults.
func New(runner helpers.CommandRunner, opts Options, log *zerolog.Logger) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Fetcher{runner: runner, opts: opts, logger: log}
}

// Concurrency returns the configured worker cap
func (f *Fetcher) Concurrency() int {
	return f.opts.Concurrency
}

// Fetch runs every task, at most Concurrency at a time, and collects each
// outcome independently. One task failing never cancels its siblings.
func (f *Fetcher) Fetch(ctx context.Context, tasks []Task) Results {
	results := make(Results, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(f.opts.Concurrency)

	for _, task := range tasks {
		p.Go(func() {
			outcome := f.run(ctx, task)

			mu.Lock()
			results[task.Key] = outcome
			mu.Unlock()

			if f.opts.OnDone != nil {
				f.opts.OnDone(task.Key, outcome)
			}
		})
	}
	p.Wait()

	f.logger.Debug().
		Int("tasks", len(tasks)).
		Int("failed", len(results.Failed())).
		Int("concurrency", f.opts.Concurrency).
		Msg("fetch completed")

	return results
}

func (f *Fetcher) run(ctx context.Context, task Task) Outcome {
	taskCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	start := time.Now()
	f.logger.Debug().
		Str("key", task.Key).
		Str("command", task.Command.Name).
		Int("args", len(task.Command.Args)).
		Msg("running query")

	res, err := f.runner.Execute(taskCtx, task.Command.Name, task.Command.Args...)
	outcome := Outcome{Duration: time.Since(start)}

	switch {
	case err != nil:
		outcome.Err = fmt.Errorf("task %s: %w", task.Key, err)
	case res == nil:
		outcome.Err = fmt.Errorf("task %s: no result", task.Key)
	case !res.Success():
		outcome.Err = &core.CommandError{
			Command:  task.Command.Name,
			Args:     task.Command.Args,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	default:
		outcome.Stdout = res.Stdout
	}

	if outcome.Err != nil {
		f.logger.Warn().
			Err(outcome.Err).
			Str("key", task.Key).
			Dur("duration", outcome.Duration).
			Msg("query failed")
	}

	return outcome
}
