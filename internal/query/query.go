// Package query answers the two read operations: every installed package,
// and the user-installed packages annotated with dependencies and category.
//
// Both serve the cached snapshot unless a refresh is forced or nothing is
// cached. A live fetch replaces the snapshot only when it fully succeeded.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/classify"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/fetcher"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/parser"
	"github.com/quantmind-br/nebula/internal/syspkg"
	"github.com/rs/zerolog"
)

const (
	// DefaultChunkSize is the maximum number of subjects per deplist call
	DefaultChunkSize = 200
	// DefaultMaxChunkBytes caps the summed argument bytes of one deplist call
	DefaultMaxChunkBytes = 64 * 1024
)

// Progress observes the dependency chunks of a user-installed fetch
type Progress interface {
	Start(total int)
	Advance(key string, err error)
	Finish()
}

// Options tunes fetching
type Options struct {
	Concurrency   int
	Timeout       time.Duration
	ChunkSize     int
	MaxChunkBytes int
	Progress      Progress
}

// Result is the answer to a list request
type Result struct {
	Snapshot  *core.Snapshot
	FromCache bool
	// Chunks is the number of dependency queries issued
	Chunks int
	// Failures is the number of dependency queries that failed
	Failures int
}

// Partial reports whether some dependency queries failed
func (r *Result) Partial() bool {
	return r != nil && r.Failures > 0
}

// Service implements the query operations
type Service struct {
	provider syspkg.Provider
	runner   helpers.CommandRunner
	store    cache.Store
	opts     Options
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewService creates a query service
func NewService(provider syspkg.Provider, runner helpers.CommandRunner, store cache.Store, opts Options, log *zerolog.Logger) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxChunkBytes <= 0 {
		opts.MaxChunkBytes = DefaultMaxChunkBytes
	}
	if store == nil {
		store = cache.NullStore{}
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Service{
		provider: provider,
		runner:   runner,
		store:    store,
		opts:     opts,
		logger:   log,
		now:      time.Now,
	}
}

// ListAll returns every installed package by name
func (s *Service) ListAll(ctx context.Context, forceRefresh bool) (*Result, error) {
	if res, ok := s.cached(ctx, core.ModeFlat, forceRefresh); ok {
		return res, nil
	}

	out, err := s.single(ctx, "installed", s.provider.ListInstalled())
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}

	names := parser.ParseFlatList(out)
	records := make([]core.PackageRecord, 0, len(names))
	for _, name := range names {
		records = append(records, core.PackageRecord{Name: name})
	}

	snap := core.NewSnapshot(core.ModeFlat, records, s.now())
	s.save(ctx, snap)

	s.logger.Info().Int("packages", snap.Len()).Msg("installed packages fetched")
	return &Result{Snapshot: snap}, nil
}

// ListUserInstalled returns the user-installed packages with their
// dependencies and category. The subject query strictly precedes the
// batched dependency queries.
func (s *Service) ListUserInstalled(ctx context.Context, forceRefresh bool) (*Result, error) {
	if res, ok := s.cached(ctx, core.ModeAnnotated, forceRefresh); ok {
		return res, nil
	}

	out, err := s.single(ctx, "userinstalled", s.provider.ListUserInstalled())
	if err != nil {
		return nil, fmt.Errorf("list user-installed packages: %w", err)
	}

	names := parser.ParseFlatList(out)
	subjects := dedupe(parser.RawTokens(out))

	deps, chunks, failures, err := s.dependencies(ctx, subjects)
	if err != nil {
		return nil, fmt.Errorf("resolve dependencies: %w", err)
	}

	records := make([]core.PackageRecord, 0, len(names))
	for _, name := range names {
		records = append(records, core.PackageRecord{
			Name:         name,
			Dependencies: core.NewDependencies(deps[name]),
		})
	}
	classify.Records(records)

	snap := core.NewSnapshot(core.ModeAnnotated, records, s.now())
	res := &Result{Snapshot: snap, Chunks: chunks, Failures: failures}

	if res.Partial() {
		s.logger.Warn().
			Int("failed_chunks", failures).
			Int("chunks", chunks).
			Msg("dependency resolution incomplete, result not cached")
		return res, nil
	}

	s.save(ctx, snap)
	s.logger.Info().
		Int("packages", snap.Len()).
		Int("chunks", chunks).
		Msg("user-installed packages fetched")
	return res, nil
}

func (s *Service) cached(ctx context.Context, mode core.Mode, forceRefresh bool) (*Result, bool) {
	if forceRefresh {
		s.logger.Debug().Str("mode", string(mode)).Msg("cache bypassed")
		return nil, false
	}

	snap, found, err := s.store.Load(ctx, mode)
	if err != nil {
		s.logger.Warn().Err(err).Str("mode", string(mode)).Msg("cache read failed, fetching live")
		return nil, false
	}
	if !found {
		s.logger.Debug().Str("mode", string(mode)).Msg("cache miss")
		return nil, false
	}

	s.logger.Debug().
		Str("mode", string(mode)).
		Time("captured_at", snap.CapturedAt).
		Msg("cache hit")
	return &Result{Snapshot: snap, FromCache: true}, true
}

func (s *Service) save(ctx context.Context, snap *core.Snapshot) {
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("mode", string(snap.Mode)).Msg("cache write failed")
	}
}

// single runs one query and returns its stdout. When the query fails the
// returned error unwraps to the underlying *core.CommandError if any.
func (s *Service) single(ctx context.Context, key string, cmd syspkg.Command) (string, error) {
	f := fetcher.New(s.runner, fetcher.Options{Concurrency: 1, Timeout: s.opts.Timeout}, s.logger)
	results := f.Fetch(ctx, []fetcher.Task{{Key: key, Command: cmd}})

	outcome := results[key]
	if outcome.Err != nil {
		return "", outcome.Err
	}
	return outcome.Stdout, nil
}

// dependencies resolves subjects in chunked deplist calls run through a
// bounded fetcher. It fails only when every chunk failed.
func (s *Service) dependencies(ctx context.Context, subjects []string) (parser.DependencyMap, int, int, error) {
	merged := make(parser.DependencyMap)
	chunks := chunkSubjects(subjects, s.opts.ChunkSize, s.opts.MaxChunkBytes)
	if len(chunks) == 0 {
		return merged, 0, 0, nil
	}

	tasks := make([]fetcher.Task, 0, len(chunks))
	for i, chunk := range chunks {
		tasks = append(tasks, fetcher.Task{
			Key:     fmt.Sprintf("deplist-%04d", i),
			Command: s.provider.Deplist(chunk),
		})
	}

	fopts := fetcher.Options{Concurrency: s.opts.Concurrency, Timeout: s.opts.Timeout}
	if p := s.opts.Progress; p != nil {
		p.Start(len(tasks))
		defer p.Finish()
		fopts.OnDone = func(key string, o fetcher.Outcome) { p.Advance(key, o.Err) }
	}

	results := fetcher.New(s.runner, fopts, s.logger).Fetch(ctx, tasks)
	if err := results.Err(); err != nil {
		return nil, len(chunks), len(chunks), err
	}

	for _, key := range results.Succeeded() {
		merged.Merge(parser.ParseDeplist(results[key].Stdout))
	}

	return merged, len(chunks), len(results.Failed()), nil
}

// Details extracts the raw diagnostic output carried by a query error
func Details(err error) string {
	var cmdErr *core.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Details()
	}
	return ""
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
