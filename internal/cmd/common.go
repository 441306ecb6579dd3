package cmd

import (
	"context"
	"errors"

	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/mutation"
	"github.com/quantmind-br/nebula/internal/paths"
	"github.com/quantmind-br/nebula/internal/query"
	"github.com/quantmind-br/nebula/internal/syspkg"
	"github.com/quantmind-br/nebula/internal/syspkg/dnf"
	"github.com/rs/zerolog"
)

// newCommandRunner is replaced in tests
var newCommandRunner = func() helpers.CommandRunner {
	return helpers.NewOSCommandRunner()
}

// services bundles the facades a command needs, built from the config
type services struct {
	provider syspkg.Provider
	runner   helpers.CommandRunner
	store    cache.Store
	query    *query.Service
	mutation *mutation.Service
}

// dnfOptions maps the dnf section, filling in the default binaries
func dnfOptions(cfg *config.Config) dnf.Options {
	opts := dnf.Options{
		Binary:      cfg.DNF.Binary,
		RPMBinary:   cfg.DNF.RPMBinary,
		QueryFormat: cfg.DNF.QueryFormat,
	}
	if opts.Binary == "" {
		opts.Binary = "dnf"
	}
	if opts.RPMBinary == "" {
		opts.RPMBinary = "rpm"
	}
	return opts
}

func newProvider(cfg *config.Config) syspkg.Provider {
	return dnf.NewProvider(dnfOptions(cfg))
}

func openStore(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (cache.Store, error) {
	resolver := paths.NewResolver(cfg)
	return cache.Open(ctx, cache.Options{
		Backend: cfg.Cache.Backend,
		Dir:     resolver.CacheDir(),
		DBFile:  resolver.DBFile(),
	}, log)
}

// openServices wires provider, runners, store and both facades. progress may be nil.
func openServices(ctx context.Context, cfg *config.Config, log *zerolog.Logger, progress query.Progress) (*services, error) {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	runner := newCommandRunner()
	elevated, err := helpers.NewElevatedRunner(runner, cfg.Privilege.Command)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	provider := newProvider(cfg)

	return &services{
		provider: provider,
		runner:   runner,
		store:    store,
		query: query.NewService(provider, runner, store, query.Options{
			Concurrency:   cfg.Fetch.Concurrency,
			Timeout:       cfg.Fetch.Timeout,
			ChunkSize:     cfg.Fetch.ChunkSize,
			MaxChunkBytes: cfg.Fetch.MaxChunkBytes,
			Progress:      progress,
		}, log),
		mutation: mutation.NewService(provider, elevated, store, nil, log),
	}, nil
}

func (s *services) Close(log *zerolog.Logger) {
	if err := s.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close cache store")
	}
}
