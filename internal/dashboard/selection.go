package dashboard

import (
	"github.com/ppiankov/manifesto/internal/model"
)

// Selection is the (model, year) shown by the parties view
type Selection struct {
	Model string `json:"model"`
	Year  string `json:"year"`
}

// Valid reports whether both parts are set
func (s Selection) Valid() bool {
	return s.Model != "" && s.Year != ""
}

// resolveModelChange keeps year when modelName is configured for it and
// otherwise switches to the newest year that has modelName. The year stays
// unchanged when the model is not configured anywhere.
func resolveModelChange(cfg model.ArtifactConfig, modelName, year string) (Selection, bool) {
	if _, ok := cfg.Entries(year, modelName); ok {
		return Selection{Model: modelName, Year: year}, true
	}
	if latest, ok := cfg.LatestYearFor(modelName); ok {
		return Selection{Model: modelName, Year: latest}, true
	}
	return Selection{Model: modelName, Year: year}, false
}

// resolveYearChange keeps modelName when it is configured for year and
// otherwise switches to the year's first model. The model is cleared when the
// year has none.
func resolveYearChange(cfg model.ArtifactConfig, modelName, year string) Selection {
	if _, ok := cfg.Entries(year, modelName); ok {
		return Selection{Model: modelName, Year: year}
	}
	if first, ok := cfg.FirstModel(year); ok {
		return Selection{Model: first, Year: year}
	}
	return Selection{Year: year}
}
