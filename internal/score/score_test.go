package score

import (
	"encoding/json"
	"testing"

	"github.com/ppiankov/manifesto/internal/model"
)

func testParties() []model.PartyClusters {
	return []model.PartyClusters{
		{
			Year:         "2021",
			Party:        "spd",
			PartyDisplay: "SPD",
			TotalModels:  4,
			Items: []model.Cluster{
				{Text: "low", Confidence: 0.25},
				{Text: "high", Confidence: 1.0},
				{Text: "medium", Confidence: 0.5},
			},
		},
		{
			Year:         "2021",
			Party:        "afd",
			PartyDisplay: "AFD",
			TotalModels:  4,
			Items: []model.Cluster{
				{Text: "a-high", Confidence: 0.8},
				{Text: "a-medium", Confidence: 0.75},
			},
		},
		{
			Year:         "2021",
			Party:        "gruene",
			PartyDisplay: "Bündnis 90/Die Grünen",
			TotalModels:  2,
			Items: []model.Cluster{
				{Text: "g-low", Confidence: 0.49},
			},
		},
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		confidence float64
		want       Band
	}{
		{1.0, BandHigh},
		{0.8, BandHigh},
		{0.79, BandMedium},
		{0.5, BandMedium},
		{0.49, BandLow},
		{0, BandLow},
	}
	for _, tc := range cases {
		if got := Classify(tc.confidence); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.confidence, got, tc.want)
		}
	}
}

func TestSummarize_OrderAndCounts(t *testing.T) {
	summaries := Summarize(testParties())
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}

	// German collation: AFD < Bündnis < SPD
	want := []string{"afd", "gruene", "spd"}
	for i, s := range summaries {
		if s.Party != want[i] {
			t.Errorf("summary %d: expected %s, got %s", i, want[i], s.Party)
		}
	}

	spd := summaries[2]
	if spd.High != 1 || spd.Medium != 1 || spd.Low != 1 {
		t.Errorf("unexpected spd counts %+v", spd)
	}
	if spd.Count(BandHigh) != 1 || spd.Count(BandLow) != 1 {
		t.Error("Count does not match fields")
	}
}

func TestMatchesConfidence_BandBoundaries(t *testing.T) {
	cases := []struct {
		band       Band
		confidence float64
		want       bool
	}{
		{BandHigh, 1.0, true},
		{BandHigh, 0.8, true},
		{BandHigh, 0.79, false},
		{BandMedium, 0.8, false},
		{BandMedium, 0.5, true},
		{BandMedium, 0.75, true},
		{BandLow, 0.5, false},
		{BandLow, 0, true},
		{BandLow, 0.49, true},
	}
	for _, tc := range cases {
		f := BandFilter(tc.band, "", "")
		if got := f.MatchesConfidence(tc.confidence); got != tc.want {
			t.Errorf("%s band, confidence %v: got %v, want %v", tc.band, tc.confidence, got, tc.want)
		}
	}
}

func TestCards_NilFilterKeepsEverything(t *testing.T) {
	cards := Cards(testParties(), nil)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].PartyDisplay != "AFD" || cards[2].PartyDisplay != "SPD" {
		t.Errorf("cards not in display order: %s ... %s", cards[0].PartyDisplay, cards[2].PartyDisplay)
	}

	spd := cards[2]
	for i := 1; i < len(spd.Items); i++ {
		if spd.Items[i-1].Confidence < spd.Items[i].Confidence {
			t.Errorf("items not sorted by confidence descending: %v", spd.Items)
		}
	}
}

func TestCards_HighBandForOneParty(t *testing.T) {
	cards := Cards(testParties(), BandFilter(BandHigh, "spd", "2021"))
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if len(cards[0].Items) != 1 || cards[0].Items[0].Text != "high" {
		t.Errorf("expected only the 1.0 cluster, got %+v", cards[0].Items)
	}
}

func TestCards_SkipsEmptyCards(t *testing.T) {
	cards := Cards(testParties(), BandFilter(BandLow, "", ""))
	for _, c := range cards {
		if c.Party == "afd" {
			t.Error("afd has no low clusters and should not produce a card")
		}
	}
	if len(cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(cards))
	}
}

func TestCards_YearMismatch(t *testing.T) {
	if cards := Cards(testParties(), &Filter{Year: "2017"}); len(cards) != 0 {
		t.Errorf("expected no cards for other year, got %d", len(cards))
	}
}

func TestCards_DoesNotMutateInput(t *testing.T) {
	parties := testParties()
	before, _ := json.Marshal(parties)

	Cards(parties, nil)
	Cards(parties, BandFilter(BandMedium, "", ""))
	Summarize(parties)

	after, _ := json.Marshal(parties)
	if string(before) != string(after) {
		t.Error("filtering modified the aggregation result")
	}
}

func TestParseBand(t *testing.T) {
	if b, ok := ParseBand("medium"); !ok || b != BandMedium {
		t.Errorf("ParseBand(medium) = %s, %v", b, ok)
	}
	if _, ok := ParseBand("none"); ok {
		t.Error("expected unknown band to be rejected")
	}
}
