// Package dashboard holds the application state behind every view: the
// startup sequence, the consensus cross-filter, the parties view selection and
// the derived statistics.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/manifesto/internal/consensus"
	"github.com/ppiankov/manifesto/internal/events"
	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/palette"
	"github.com/ppiankov/manifesto/internal/pipeline"
	"github.com/ppiankov/manifesto/internal/score"
	"github.com/ppiankov/manifesto/internal/session"
	"github.com/ppiankov/manifesto/internal/stats"
	"github.com/ppiankov/manifesto/internal/worker"
)

var (
	// ErrNotStarted is returned by views used before Start succeeded
	ErrNotStarted = errors.New("dashboard not started")
	// ErrNotConfigured is returned when a selection names no configured data
	ErrNotConfigured = errors.New("not configured")
)

// Defaults applied to unset Options fields
const (
	DefaultMaxRadius = 1000
	DefaultWorkers   = 8
)

// Options configures an App
type Options struct {
	Artifacts *pipeline.Artifacts
	Pool      *worker.Pool // nil creates a pool the App closes
	Bus       *events.Bus  // nil creates a private bus
	Logger    *slog.Logger // nil uses slog.Default()
	MaxRadius int
}

// App is the dashboard state. It is safe for concurrent use; bus handlers run
// synchronously inside Publish, so no method publishes while holding mu.
type App struct {
	artifacts  *pipeline.Artifacts
	pool       *worker.Pool
	ownsPool   bool
	bus        *events.Bus
	logger     *slog.Logger
	maxRadius  int
	palette    *palette.Palette
	aggregator *consensus.Aggregator

	startMu sync.Mutex

	mu           sync.RWMutex
	started      bool
	store        *session.Store
	config       model.ArtifactConfig
	distribution []model.DistributionRecord
	snapshot     []model.PartyYearConsensus
	unsubscribe  []func()

	consensusFilter *score.Filter

	selection   Selection
	mode        model.FilterMode
	rows        []stats.Row
	tableFilter *stats.RowFilter
	search      string
	sort        stats.Sort
}

// New creates an App. Nothing is loaded until Start.
func New(opts Options) *App {
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxRadius <= 0 {
		opts.MaxRadius = DefaultMaxRadius
	}
	ownsPool := opts.Pool == nil
	if ownsPool {
		opts.Pool = worker.NewPool(DefaultWorkers)
	}
	return &App{
		artifacts:  opts.Artifacts,
		pool:       opts.Pool,
		ownsPool:   ownsPool,
		bus:        opts.Bus,
		logger:     opts.Logger,
		maxRadius:  opts.MaxRadius,
		palette:    palette.New(),
		aggregator: consensus.NewAggregator(),
		mode:       model.FilterAll,
	}
}

// Start runs the startup sequence: artifact config and party colors in
// parallel, then every configured party file, then the distribution and
// consensus artifacts. Only a missing or invalid artifact config is fatal;
// the other artifacts are logged and left empty. Concurrent calls run the
// sequence once; a failed Start may be retried.
func (a *App) Start(ctx context.Context) error {
	a.startMu.Lock()
	defer a.startMu.Unlock()

	a.mu.RLock()
	started := a.started
	a.mu.RUnlock()
	if started {
		return nil
	}

	var (
		cfg    model.ArtifactConfig
		colors map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := a.artifacts.Config(gctx)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	})
	g.Go(func() error {
		c, err := a.artifacts.Colors(gctx)
		if err != nil {
			a.logger.Warn("party colors unavailable, using defaults", "error", err)
			return nil
		}
		colors = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load artifact config: %w", err)
	}
	a.palette.Merge(colors)

	store := session.NewStore(cfg, a.artifacts, a.pool, a.logger)
	if err := store.Preload(ctx); err != nil {
		return fmt.Errorf("preload: %w", err)
	}

	var (
		distribution []model.DistributionRecord
		snapshot     []model.PartyYearConsensus
		wg           sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		d, err := a.artifacts.Distribution(ctx)
		if err != nil {
			a.logger.Warn("distribution analysis unavailable", "error", err)
			return
		}
		distribution = d
	}()
	go func() {
		defer wg.Done()
		s, err := a.artifacts.Consensus(ctx)
		if err != nil {
			a.logger.Warn("consensus analysis unavailable", "error", err)
			return
		}
		snapshot = s
	}()
	wg.Wait()

	sel := Selection{}
	if years := cfg.Years(); len(years) > 0 {
		sel = resolveYearChange(cfg, "", years[0])
	}

	a.mu.Lock()
	a.store = store
	a.config = cfg
	a.distribution = distribution
	a.snapshot = snapshot
	a.unsubscribe = append(a.unsubscribe,
		a.bus.Subscribe(a.onConsensusFilter, events.FilterConsensusList),
		a.bus.Subscribe(a.onTableFilter, events.FilterPartiesTable),
	)
	a.started = true
	a.mu.Unlock()

	a.logger.Debug("dashboard started",
		"years", len(cfg.Years()),
		"models", len(cfg.Models()),
		"consensus_records", len(snapshot),
		"distribution_records", len(distribution))

	if sel.Valid() {
		return a.Select(ctx, sel)
	}
	return nil
}

// Close detaches the App from the bus and stops a pool it created
func (a *App) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	for _, fn := range unsubscribe {
		fn()
	}
	if a.ownsPool {
		a.pool.Close()
	}
}

func (a *App) onConsensusFilter(e events.Event) {
	f, _ := e.Payload.(*score.Filter)
	a.mu.Lock()
	a.consensusFilter = f
	a.mu.Unlock()
}

func (a *App) onTableFilter(e events.Event) {
	f, _ := e.Payload.(*stats.RowFilter)
	a.mu.Lock()
	a.tableFilter = f
	a.mu.Unlock()
}

// Fetches counts dataset loads that went to the artifact source
func (a *App) Fetches() int64 {
	store, err := a.loadedStore()
	if err != nil {
		return 0
	}
	return store.Fetches()
}

func (a *App) loadedStore() (*session.Store, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.started {
		return nil, ErrNotStarted
	}
	return a.store, nil
}

// Config returns the artifact config
func (a *App) Config() model.ArtifactConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Palette returns the party color palette
func (a *App) Palette() *palette.Palette {
	return a.palette
}

// Bus returns the bus the App listens on
func (a *App) Bus() *events.Bus {
	return a.bus
}

// Years returns the configured years, newest first
func (a *App) Years() []string {
	return a.Config().Years()
}

// Models returns the configured models
func (a *App) Models() []string {
	return a.Config().Models()
}

// Parties returns every configured party
func (a *App) Parties() []string {
	return a.Config().Parties()
}

// ConsensusYears returns the years present in the consensus artifact
func (a *App) ConsensusYears() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return consensus.Years(a.snapshot)
}

// ConsensusModels returns the analyzers present in the consensus artifact
func (a *App) ConsensusModels() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return consensus.Models(a.snapshot)
}

// RenderConsensus aggregates the consensus artifact for req and clears any
// band selection. The radius is clamped to [0, MaxRadius]; nil Models selects
// every analyzer, an empty Year the newest one.
func (a *App) RenderConsensus(req consensus.Request) (*consensus.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil, ErrNotStarted
	}

	req.Radius = consensus.ClampRadius(req.Radius, a.maxRadius)
	if req.Mode == "" {
		req.Mode = model.FilterAll
	}
	if req.Models == nil {
		req.Models = consensus.Models(a.snapshot)
	}
	if req.Year == "" {
		if years := consensus.Years(a.snapshot); len(years) > 0 {
			req.Year = years[0]
		}
	}

	result := a.aggregator.Aggregate(a.snapshot, req)
	a.consensusFilter = nil
	return result, nil
}

// ConsensusSummary returns the band counts of the last aggregation
func (a *App) ConsensusSummary() []score.Summary {
	last := a.aggregator.Last()
	if last == nil {
		return []score.Summary{}
	}
	return score.Summarize(last.Parties)
}

// ConsensusFilter returns the active band selection, nil when none
func (a *App) ConsensusFilter() *score.Filter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.consensusFilter
}

// ConsensusCards returns the detail list of the last aggregation under the
// active band selection.
func (a *App) ConsensusCards() []score.Card {
	last := a.aggregator.Last()
	if last == nil {
		return []score.Card{}
	}
	return score.Cards(last.Parties, a.ConsensusFilter())
}

// SelectConsensusBand narrows the detail list to one band of one party-year
func (a *App) SelectConsensusBand(party, year string, band score.Band) error {
	if _, err := a.loadedStore(); err != nil {
		return err
	}
	a.bus.Publish(events.Event{Type: events.FilterConsensusList, Payload: score.BandFilter(band, party, year)})
	return nil
}

// ClearConsensusSelection resets the detail list to the whole aggregation
func (a *App) ClearConsensusSelection() error {
	if _, err := a.loadedStore(); err != nil {
		return err
	}
	a.bus.Publish(events.Event{Type: events.FilterConsensusList})
	return nil
}

// Selection returns the current (model, year)
func (a *App) Selection() Selection {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selection
}

// Mode returns the category mode of the parties view
func (a *App) Mode() model.FilterMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// SelectModel switches to modelName, moving to its newest year when the
// current year lacks it.
func (a *App) SelectModel(ctx context.Context, modelName string) (Selection, error) {
	cfg := a.Config()
	sel, ok := resolveModelChange(cfg, modelName, a.Selection().Year)
	if !ok {
		return a.Selection(), fmt.Errorf("model %s: %w", modelName, ErrNotConfigured)
	}
	return sel, a.Select(ctx, sel)
}

// SelectYear switches to year, moving to its first model when the current
// model is missing there.
func (a *App) SelectYear(ctx context.Context, year string) (Selection, error) {
	cfg := a.Config()
	sel := resolveYearChange(cfg, a.Selection().Model, year)
	if !sel.Valid() {
		return a.Selection(), fmt.Errorf("year %s: %w", year, ErrNotConfigured)
	}
	return sel, a.Select(ctx, sel)
}

// Select loads sel if needed, rebuilds the parties table and clears its
// chart filter.
func (a *App) Select(ctx context.Context, sel Selection) error {
	store, err := a.loadedStore()
	if err != nil {
		return err
	}
	if err := store.Load(ctx, sel.Model, sel.Year); err != nil {
		return fmt.Errorf("load %s: %w", session.Key(sel.Model, sel.Year), err)
	}
	data, _ := store.Year(sel.Model, sel.Year)

	a.mu.Lock()
	a.selection = sel
	a.rows = stats.TableRows(data, a.mode)
	a.tableFilter = nil
	a.mu.Unlock()

	a.bus.Publish(events.Event{Type: events.SelectionChanged, Payload: sel})
	return nil
}

// SetMode changes the category mode, rebuilding the table and clearing its
// chart filter.
func (a *App) SetMode(mode model.FilterMode) error {
	store, err := a.loadedStore()
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	data, _ := store.Year(a.selection.Model, a.selection.Year)
	a.mode = mode
	a.rows = stats.TableRows(data, mode)
	a.tableFilter = nil
	return nil
}

// PartyCounts returns the parties chart for the current selection
func (a *App) PartyCounts() ([]stats.PartyCount, error) {
	store, err := a.loadedStore()
	if err != nil {
		return nil, err
	}
	sel, mode := a.Selection(), a.Mode()
	data, _ := store.Year(sel.Model, sel.Year)
	return stats.PartyCounts(data, mode), nil
}

// Trend returns the year trend of the selected model
func (a *App) Trend() (stats.Trend, error) {
	store, err := a.loadedStore()
	if err != nil {
		return stats.Trend{}, err
	}
	sel, mode := a.Selection(), a.Mode()
	return stats.BuildTrend(sel.Model, store.Model(sel.Model), mode), nil
}

// TableFilter returns the active chart filter of the parties table
func (a *App) TableFilter() *stats.RowFilter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tableFilter
}

// PartiesTable returns the table rows after the chart filter, the search term
// and the sort order.
func (a *App) PartiesTable() ([]stats.Row, error) {
	if _, err := a.loadedStore(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	rows := stats.FilterRows(a.rows, a.tableFilter, a.search)
	if a.sort.Column != "" {
		rows = stats.SortRows(rows, a.sort)
	}
	return rows, nil
}

// SelectPartyBar filters the table to one party and category of the chart
func (a *App) SelectPartyBar(party, category string) error {
	if _, err := a.loadedStore(); err != nil {
		return err
	}
	f := &stats.RowFilter{Party: party, Category: category, Year: a.Selection().Year}
	a.bus.Publish(events.Event{Type: events.FilterPartiesTable, Payload: f})
	return nil
}

// ClearPartySelection removes the chart filter from the table
func (a *App) ClearPartySelection() error {
	if _, err := a.loadedStore(); err != nil {
		return err
	}
	a.bus.Publish(events.Event{Type: events.FilterPartiesTable})
	return nil
}

// SearchParties sets the table search term
func (a *App) SearchParties(term string) {
	a.mu.Lock()
	a.search = term
	a.mu.Unlock()
}

// SortParties applies a header click on column and returns the new order
func (a *App) SortParties(column stats.Column) stats.Sort {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sort = a.sort.Toggle(column)
	return a.sort
}

// ModelsForParty compares every model's statements about party over year
// (empty or "all" for every year).
func (a *App) ModelsForParty(party, year string) ([]stats.ModelCount, error) {
	store, err := a.loadedStore()
	if err != nil {
		return nil, err
	}
	return stats.ModelsForParty(stats.Dataset(store.All()), party, year, a.Mode()), nil
}

// Topics groups topics by classification
func (a *App) Topics(year, modelName string) (stats.TopicStats, error) {
	store, err := a.loadedStore()
	if err != nil {
		return stats.TopicStats{}, err
	}
	return stats.Topics(stats.Dataset(store.All()), year, modelName, a.Mode()), nil
}

// Strictness compares explicit and semantic shares per model
func (a *App) Strictness(year string) ([]stats.Strictness, error) {
	store, err := a.loadedStore()
	if err != nil {
		return nil, err
	}
	return stats.BuildStrictness(stats.Dataset(store.All()), year), nil
}

// Methodology returns the distribution rows for year
func (a *App) Methodology(year string) ([]stats.MethodologyRow, error) {
	if _, err := a.loadedStore(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return stats.Methodology(a.distribution, year), nil
}

// MethodologyYears returns the years of the distribution artifact
func (a *App) MethodologyYears() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return stats.MethodologyYears(a.distribution)
}
