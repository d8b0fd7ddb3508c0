// Package session holds the party topic data loaded during one process
// lifetime, keyed by model and year.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/manifesto/internal/cache"
	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/worker"
)

// Store caches per-(model, year) party data for the session. Entries never
// expire; concurrent loads of one key share a single fetch.
type Store struct {
	config    model.ArtifactConfig
	processor *worker.BatchProcessor
	logger    *slog.Logger

	records   *gocache.Cache
	coalescer cache.Coalescer
	fetches   atomic.Int64
}

// NewStore creates a store for the datasets declared in cfg. A nil logger
// uses slog.Default().
func NewStore(cfg model.ArtifactConfig, loader worker.TopicLoader, pool *worker.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		config:    cfg,
		processor: worker.NewBatchProcessor(loader, pool),
		logger:    logger,
		records:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Key is the cache key for a (model, year) pair
func Key(modelName, year string) string {
	return modelName + "-" + year
}

// Load fetches the party files of (model, year) unless they are cached or
// already being fetched. A pair without a config entry is logged and skipped.
// Failed party files are logged and left out.
func (s *Store) Load(ctx context.Context, modelName, year string) error {
	key := Key(modelName, year)
	if _, ok := s.records.Get(key); ok {
		return nil
	}

	_, err := s.coalescer.Do(ctx, key, func() (any, error) {
		// A load that settled between the check above and joining
		if _, ok := s.records.Get(key); ok {
			return nil, nil
		}
		return nil, s.load(ctx, modelName, year)
	})
	return err
}

func (s *Store) load(ctx context.Context, modelName, year string) error {
	entries, ok := s.config.Entries(year, modelName)
	if !ok {
		s.logger.Warn("no config found", "model", modelName, "year", year)
		return nil
	}

	s.fetches.Add(1)
	results, err := s.processor.ProcessEntries(ctx, year, modelName, entries)
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", modelName, year, err)
	}

	data := make(model.PartyData, len(results))
	for _, res := range results {
		if res.Error != nil {
			s.logger.Error("party file failed", "model", modelName, "year", year, "party", res.Entry.Party, "error", res.Error)
			continue
		}
		data[res.Record.Party] = res.Record
	}

	s.records.Set(Key(modelName, year), data, gocache.NoExpiration)
	s.logger.Debug("loaded party data", "model", modelName, "year", year, "parties", len(data), "files", len(entries))
	return nil
}

// Preload loads every (year, model) pair in the config and waits for the whole
// batch.
func (s *Store) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, pair := range s.config.Pairs() {
		year, modelName := pair[0], pair[1]
		g.Go(func() error {
			return s.Load(ctx, modelName, year)
		})
	}
	return g.Wait()
}

// Year returns a copy of the party data for (model, year)
func (s *Store) Year(modelName, year string) (model.PartyData, bool) {
	v, ok := s.records.Get(Key(modelName, year))
	if !ok {
		return nil, false
	}
	return v.(model.PartyData).Clone(), true
}

// Model returns copies of all cached years of one model, keyed by year
func (s *Store) Model(modelName string) map[string]model.PartyData {
	out := make(map[string]model.PartyData)
	for _, year := range s.config.Years() {
		if data, ok := s.Year(modelName, year); ok {
			out[year] = data
		}
	}
	return out
}

// All returns copies of every cached dataset, keyed by model then year
func (s *Store) All() map[string]map[string]model.PartyData {
	out := make(map[string]map[string]model.PartyData)
	for _, modelName := range s.config.Models() {
		if years := s.Model(modelName); len(years) > 0 {
			out[modelName] = years
		}
	}
	return out
}

// Config returns the artifact config the store was built for
func (s *Store) Config() model.ArtifactConfig {
	return s.config
}

// Fetches counts dataset loads that went to the source
func (s *Store) Fetches() int64 {
	return s.fetches.Load()
}
