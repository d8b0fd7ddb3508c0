package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ppiankov/manifesto/internal/model"
)

// Artifact file names relative to the source root
const (
	ConfigFile       = "config.json"
	ColorsFile       = "colors.json"
	DistributionFile = "distribution_analysis.json"
	ConsensusFile    = "consensus_analysis.json"
)

// Artifacts decodes the dashboard's JSON documents from a Source
type Artifacts struct {
	source Source
	logger *slog.Logger
}

// NewArtifacts creates a decoder over source. A nil logger uses slog.Default().
func NewArtifacts(source Source, logger *slog.Logger) *Artifacts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Artifacts{source: source, logger: logger}
}

// Config reads config.json
func (a *Artifacts) Config(ctx context.Context) (model.ArtifactConfig, error) {
	var cfg model.ArtifactConfig
	if err := a.decode(ctx, ConfigFile, &cfg); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = model.ArtifactConfig{}
	}
	return cfg, nil
}

// Colors reads colors.json, a party name to hex color map
func (a *Artifacts) Colors(ctx context.Context) (map[string]string, error) {
	var colors map[string]string
	if err := a.decode(ctx, ColorsFile, &colors); err != nil {
		return nil, err
	}
	return colors, nil
}

// Distribution reads distribution_analysis.json
func (a *Artifacts) Distribution(ctx context.Context) ([]model.DistributionRecord, error) {
	var records []model.DistributionRecord
	if err := a.decode(ctx, DistributionFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Consensus reads consensus_analysis.json
func (a *Artifacts) Consensus(ctx context.Context) ([]model.PartyYearConsensus, error) {
	var records []model.PartyYearConsensus
	if err := a.decode(ctx, ConsensusFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Topics reads one party results file. Fetch failures are returned; an empty
// or malformed body yields an empty topic list.
func (a *Artifacts) Topics(ctx context.Context, entry model.ConfigEntry) ([]model.Topic, error) {
	data, err := a.source.Read(ctx, entry.File)
	if err != nil {
		return nil, err
	}

	topics := []model.Topic{}
	if len(bytes.TrimSpace(data)) == 0 {
		return topics, nil
	}

	var file model.TopicFile
	if err := json.Unmarshal(data, &file); err != nil {
		a.logger.Warn("invalid JSON in party file", "file", entry.File, "party", entry.Party, "error", err)
		return topics, nil
	}
	if file.Topics != nil {
		topics = file.Topics
	}
	return topics, nil
}

func (a *Artifacts) decode(ctx context.Context, name string, v any) error {
	data, err := a.source.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
