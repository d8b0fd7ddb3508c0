package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/manifesto/internal/model"
)

// TopicLoader fetches and decodes one party results file
type TopicLoader interface {
	Topics(ctx context.Context, entry model.ConfigEntry) ([]model.Topic, error)
}

// PartyJob loads one party file of a (year, model) pair
type PartyJob struct {
	Year   string
	Model  string
	Entry  model.ConfigEntry
	Loader TopicLoader
}

// Execute executes the party job
func (j *PartyJob) Execute(ctx context.Context) Result {
	topics, err := j.Loader.Topics(ctx, j.Entry)
	if err != nil {
		return &PartyResult{
			Entry: j.Entry,
			Error: fmt.Errorf("load %s: %w", j.Entry.File, err),
		}
	}

	for i := range topics {
		topics[i].SourceFile = j.Entry.OriginalFile
	}
	return &PartyResult{
		Entry:  j.Entry,
		Record: model.NewPartyRecord(j.Year, j.Entry.Party, topics),
	}
}

// PartyResult is the outcome of a PartyJob. Record is nil when Error is set.
type PartyResult struct {
	Entry  model.ConfigEntry
	Record *model.PartyRecord
	Error  error
}

// GetError returns the error from the party result
func (r *PartyResult) GetError() error {
	return r.Error
}

// BatchProcessor loads all party files of a (year, model) pair on a pool
type BatchProcessor struct {
	loader TopicLoader
	pool   *Pool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(loader TopicLoader, pool *Pool) *BatchProcessor {
	return &BatchProcessor{
		loader: loader,
		pool:   pool,
	}
}

// ProcessEntries loads every entry concurrently. Results keep entry order;
// failed entries carry their error and no record.
func (b *BatchProcessor) ProcessEntries(ctx context.Context, year, modelName string, entries []model.ConfigEntry) ([]*PartyResult, error) {
	jobs := make([]Job, len(entries))
	for i, e := range entries {
		jobs[i] = &PartyJob{
			Year:   year,
			Model:  modelName,
			Entry:  e,
			Loader: b.loader,
		}
	}

	results, err := b.pool.Run(ctx, jobs)

	partyResults := make([]*PartyResult, len(results))
	for i, result := range results {
		if result == nil {
			partyResults[i] = &PartyResult{Entry: entries[i], Error: err}
			continue
		}
		partyResults[i] = result.(*PartyResult)
	}
	return partyResults, err
}
