package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/score"
	"github.com/ppiankov/manifesto/internal/stats"
)

const quoteWidth = 60

// ConsensusSummary writes the band counts per party-year
func (r *Renderer) ConsensusSummary(summaries []score.Summary) error {
	if r.json {
		return r.WriteJSON(summaries)
	}
	headers := []string{"Partei", "Jahr", "Modelle"}
	for _, b := range score.Bands {
		headers = append(headers, b.Label())
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{r.partyStyle(s.Party).Render(s.PartyDisplay), s.Year, strconv.Itoa(s.TotalModels)}
		for _, b := range score.Bands {
			row = append(row, strconv.Itoa(s.Count(b)))
		}
		rows = append(rows, row)
	}
	return r.table(headers, rows)
}

// ConsensusCards writes the detail list
func (r *Renderer) ConsensusCards(cards []score.Card) error {
	if r.json {
		return r.WriteJSON(cards)
	}
	if len(cards) == 0 {
		return r.println(r.faint.Render("Keine Ergebnisse für diese Auswahl."))
	}
	for _, c := range cards {
		head := fmt.Sprintf("%s (%s) · %d Modelle", c.PartyDisplay, c.Year, c.TotalModels)
		if err := r.println(r.partyStyle(c.Party).Render(head)); err != nil {
			return err
		}
		for _, item := range c.Items {
			band := score.Classify(item.Confidence)
			badge := r.lg.NewStyle().Foreground(lipgloss.Color(band.Color())).Render(fmt.Sprintf("%4s", percent(item.Confidence)))
			line := fmt.Sprintf("  %s %d/%d  %s  %s",
				badge, item.VoteCount, item.TotalModels,
				truncate(item.Text, quoteWidth),
				r.faint.Render(strings.Join(item.Models, ", ")))
			if err := r.println(line); err != nil {
				return err
			}
		}
	}
	return nil
}

// PartyCounts writes the parties chart as bars
func (r *Renderer) PartyCounts(counts []stats.PartyCount) error {
	if r.json {
		return r.WriteJSON(counts)
	}
	maxTotal := 0
	for _, c := range counts {
		if c.Total() > maxTotal {
			maxTotal = c.Total()
		}
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		color := r.palette.Color(c.Party)
		rows = append(rows, []string{
			r.partyStyle(c.Party).Render(c.Party),
			strconv.Itoa(c.Semantic),
			strconv.Itoa(c.Explicit),
			r.bar(c.Total(), maxTotal, color),
		})
	}
	return r.table([]string{"Partei", "Semantisch", "Explizit", ""}, rows)
}

// Trend writes one row per party with its count per year
func (r *Renderer) Trend(t stats.Trend) error {
	if r.json {
		return r.WriteJSON(t)
	}
	headers := append([]string{"Partei"}, t.Years...)
	rows := make([][]string, 0, len(t.Series))
	for _, s := range t.Series {
		row := []string{r.partyStyle(s.Party).Render(s.Party)}
		for _, n := range s.Counts {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	return r.table(headers, rows)
}

// PartiesTable writes the flattened topic rows with their PDF links
func (r *Renderer) PartiesTable(rows []stats.Row) error {
	if r.json {
		return r.WriteJSON(rows)
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			r.partyStyle(row.Party).Render(row.Party),
			row.Category,
			row.Topic,
			truncate(row.OriginalQuote, quoteWidth),
			row.Location,
		})
	}
	if err := r.table([]string{"Partei", "Kategorie", "Thema", "Zitat", "Fundstelle"}, out); err != nil {
		return err
	}
	for _, row := range rows {
		if link := row.Link(); link != "" {
			if err := r.println(r.faint.Render(link)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ModelCounts writes every model's totals for one party
func (r *Renderer) ModelCounts(party string, counts []stats.ModelCount) error {
	if r.json {
		return r.WriteJSON(counts)
	}
	maxTotal := 0
	for _, c := range counts {
		if t := c.Semantic + c.Explicit; t > maxTotal {
			maxTotal = t
		}
	}
	color := r.palette.Color(party)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.Model,
			strconv.Itoa(c.Semantic),
			strconv.Itoa(c.Explicit),
			r.bar(c.Semantic+c.Explicit, maxTotal, color),
		})
	}
	return r.table([]string{"Modell", "Semantisch", "Explizit", ""}, rows)
}

// Topics writes the classification counts and the top classifications split
// by party
func (r *Renderer) Topics(ts stats.TopicStats) error {
	if r.json {
		return r.WriteJSON(ts)
	}

	words := ts.Cloud(stats.CloudLimit)
	rows := make([][]string, 0, len(words))
	for _, w := range words {
		rows = append(rows, []string{w.Name, strconv.Itoa(w.Count)})
	}
	if err := r.table([]string{"Klassifikation", "Anzahl"}, rows); err != nil {
		return err
	}

	chart := ts.Stacked(stats.StackedTopN)
	headers := []string{"Partei"}
	for _, series := range chart.Series {
		headers = append(headers, series.Label)
	}
	stacked := make([][]string, 0, len(chart.Parties))
	for i, party := range chart.Parties {
		row := []string{r.partyStyle(party).Render(party)}
		for _, series := range chart.Series {
			row = append(row, strconv.Itoa(series.Counts[i]))
		}
		stacked = append(stacked, row)
	}
	return r.table(headers, stacked)
}

// Classification writes one classification's party spread and items
func (r *Renderer) Classification(c stats.Classification) error {
	if r.json {
		return r.WriteJSON(c)
	}
	if err := r.Title("%s (%d)", c.Name, c.Count); err != nil {
		return err
	}
	dist := c.PartyDistribution()
	rows := make([][]string, 0, len(dist))
	for _, d := range dist {
		rows = append(rows, []string{r.partyStyle(d.Party).Render(d.Party), strconv.Itoa(d.Count)})
	}
	if err := r.table([]string{"Partei", "Anzahl"}, rows); err != nil {
		return err
	}
	for _, item := range c.Items {
		line := fmt.Sprintf("  %s · %s %s: %s", item.Party, item.Model, item.Year, truncate(item.Topic.Topic, quoteWidth))
		if err := r.println(line); err != nil {
			return err
		}
	}
	return nil
}

// TopicList writes statements one per line
func (r *Renderer) TopicList(topics []model.Topic) error {
	if r.json {
		return r.WriteJSON(topics)
	}
	for _, t := range topics {
		line := fmt.Sprintf("  %s  %s", r.faint.Render(t.Category), truncate(t.Topic, quoteWidth))
		if err := r.println(line); err != nil {
			return err
		}
	}
	return nil
}

// Strictness writes the explicit and semantic shares per model
func (r *Renderer) Strictness(rows []stats.Strictness) error {
	if r.json {
		return r.WriteJSON(rows)
	}
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		out = append(out, []string{
			s.Model,
			fmt.Sprintf("%.1f%%", s.ExplicitPct),
			fmt.Sprintf("%.1f%%", s.SemanticPct),
			strconv.Itoa(s.Explicit + s.Semantic),
		})
	}
	return r.table([]string{"Modell", "Explizit", "Semantisch", "Gesamt"}, out)
}

// Methodology writes where each document's findings were located
func (r *Renderer) Methodology(rows []stats.MethodologyRow) error {
	if r.json {
		return r.WriteJSON(rows)
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		fuzzy := 0
		points := make([]string, 0, len(row.Points))
		for _, p := range row.Points {
			mark := ""
			if p.Fuzzy {
				fuzzy++
				mark = "~"
			}
			points = append(points, fmt.Sprintf("%.0f%s", p.Percent, mark))
		}
		out = append(out, []string{
			row.Label,
			strconv.Itoa(len(row.Points)),
			strconv.Itoa(fuzzy),
			truncate(strings.Join(points, " "), quoteWidth),
		})
	}
	return r.table([]string{"Dokument", "Fundstellen", "Unscharf", "Position %"}, out)
}
