package consensus

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ppiankov/manifesto/internal/model"
)

func TestCluster_OverlappingSpansMerge(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 10, End: 20, Text: "short"},
		{Model: "B", Start: 15, End: 35, Text: "a longer quoted phrase"},
	}

	clusters := Cluster(findings, 5, 2)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}

	c := clusters[0]
	if c.Start != 10 || c.End != 35 {
		t.Errorf("expected span 10-35, got %d-%d", c.Start, c.End)
	}
	if c.VoteCount != 2 {
		t.Errorf("expected vote_count 2, got %d", c.VoteCount)
	}
	if c.Text != "a longer quoted phrase" {
		t.Errorf("unexpected representative text %q", c.Text)
	}
	if c.Confidence != 1 {
		t.Errorf("expected confidence 1, got %f", c.Confidence)
	}
}

func TestCluster_DistantSpansSplit(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 10, End: 20, Text: "short"},
		{Model: "B", Start: 40, End: 50, Text: "a longer quoted phrase"},
	}

	clusters := Cluster(findings, 5, 2)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters (gap 20 > 5), got %d", len(clusters))
	}
	if clusters[0].Start != 10 || clusters[1].Start != 40 {
		t.Errorf("clusters not ordered by start: %d, %d", clusters[0].Start, clusters[1].Start)
	}
	for _, c := range clusters {
		if c.VoteCount != 1 || c.Confidence != 0.5 {
			t.Errorf("expected single vote at 0.5, got %d at %f", c.VoteCount, c.Confidence)
		}
	}
}

func TestCluster_RadiusZeroMergesTouchingOnly(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 0, End: 10, Text: "x"},
		{Model: "B", Start: 10, End: 15, Text: "y"},
		{Model: "C", Start: 16, End: 20, Text: "z"},
	}

	clusters := Cluster(findings, 0, 3)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].End != 15 || clusters[0].VoteCount != 2 {
		t.Errorf("expected first cluster to end at 15 with 2 votes, got %d/%d", clusters[0].End, clusters[0].VoteCount)
	}
}

func TestCluster_ContainedSpanKeepsEnd(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 0, End: 100, Text: "outer"},
		{Model: "B", Start: 10, End: 20, Text: "inner"},
		{Model: "C", Start: 101, End: 110, Text: "after"},
	}

	clusters := Cluster(findings, 1, 3)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].End != 110 {
		t.Errorf("expected end 110, got %d", clusters[0].End)
	}
}

func TestCluster_Empty(t *testing.T) {
	clusters := Cluster(nil, 10, 3)
	if clusters == nil || len(clusters) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", clusters)
	}
}

func TestCluster_ZeroTotalModels(t *testing.T) {
	clusters := Cluster([]model.Finding{{Model: "A", Start: 0, End: 5, Text: "x"}}, 0, 0)
	if clusters[0].Confidence != 0 {
		t.Errorf("expected confidence 0 for total_models 0, got %f", clusters[0].Confidence)
	}
}

func TestCluster_SameModelVotesOnce(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 0, End: 10, Text: "one"},
		{Model: "A", Start: 5, End: 12, Text: "two"},
		{Model: "B", Start: 8, End: 14, Text: "three"},
	}

	c := Cluster(findings, 0, 4)[0]
	if c.VoteCount != 2 {
		t.Errorf("expected 2 distinct models, got %d", c.VoteCount)
	}
	if !reflect.DeepEqual(c.Models, []string{"A", "B"}) {
		t.Errorf("unexpected models %v", c.Models)
	}
	if len(c.Findings) != 3 {
		t.Errorf("expected 3 member findings, got %d", len(c.Findings))
	}
	if c.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %f", c.Confidence)
	}
}

func TestCluster_RepresentativeTieKeepsEarliest(t *testing.T) {
	findings := []model.Finding{
		{Model: "B", Start: 5, End: 10, Text: "later"},
		{Model: "A", Start: 0, End: 6, Text: "first"},
	}

	c := Cluster(findings, 0, 2)[0]
	if c.Text != "first" {
		t.Errorf("expected earliest finding in sort order to win the tie, got %q", c.Text)
	}
	if c.Findings[0].Model != "A" {
		t.Errorf("expected findings in start order, got %s first", c.Findings[0].Model)
	}
}

func TestCluster_RepresentativeCountsRunes(t *testing.T) {
	findings := []model.Finding{
		{Model: "A", Start: 0, End: 5, Text: "ääää"}, // 8 bytes, 4 runes
		{Model: "B", Start: 1, End: 6, Text: "abcde"},
	}

	c := Cluster(findings, 0, 2)[0]
	if c.Text != "abcde" {
		t.Errorf("expected rune length to decide, got %q", c.Text)
	}
}

func TestCluster_StableOnEqualStarts(t *testing.T) {
	findings := []model.Finding{
		{Model: "B", Start: 0, End: 5, Text: "bbb"},
		{Model: "A", Start: 0, End: 5, Text: "aaa"},
	}

	c := Cluster(findings, 0, 2)[0]
	if c.Findings[0].Model != "B" || c.Text != "bbb" {
		t.Errorf("expected input order preserved for equal starts, got %s / %q", c.Findings[0].Model, c.Text)
	}
}

func TestCluster_DoesNotReorderInput(t *testing.T) {
	findings := []model.Finding{
		{Model: "B", Start: 50, End: 60},
		{Model: "A", Start: 0, End: 10},
	}
	Cluster(findings, 0, 2)
	if findings[0].Model != "B" {
		t.Error("Cluster sorted the caller's slice in place")
	}
}

func randomFindings(r *rand.Rand, n int) []model.Finding {
	out := make([]model.Finding, n)
	for i := range out {
		start := r.Intn(5000)
		out[i] = model.Finding{
			Model: fmt.Sprintf("m%d", r.Intn(4)),
			Start: start,
			End:   start + r.Intn(200),
			Text:  fmt.Sprintf("finding-%d", i),
		}
	}
	return out
}

func TestCluster_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	findings := randomFindings(r, 300)

	first := Cluster(findings, 25, 4)
	second := Cluster(findings, 25, 4)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("clustering the same input twice produced different results")
	}
}

func TestCluster_RadiusMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	findings := randomFindings(r, 400)

	radii := []int{0, 1, 5, 20, 50, 100, 500, 5000}
	prev := len(Cluster(findings, radii[0], 4))
	for _, radius := range radii[1:] {
		n := len(Cluster(findings, radius, 4))
		if n > prev {
			t.Errorf("radius %d produced %d clusters, more than %d at a smaller radius", radius, n, prev)
		}
		prev = n
	}
}

func TestCluster_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	findings := randomFindings(r, 500)
	total := 4

	for _, c := range Cluster(findings, 10, total) {
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("confidence %f out of bounds", c.Confidence)
		}
		if c.VoteCount > total {
			t.Errorf("vote_count %d exceeds total_models %d", c.VoteCount, total)
		}
		distinct := make(map[string]bool)
		for _, f := range c.Findings {
			distinct[f.Model] = true
			if f.Start < c.Start || f.End > c.End {
				t.Errorf("finding %d-%d outside cluster %d-%d", f.Start, f.End, c.Start, c.End)
			}
		}
		if len(distinct) != c.VoteCount {
			t.Errorf("vote_count %d but %d distinct models", c.VoteCount, len(distinct))
		}
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(3, 4); got != 0.75 {
		t.Errorf("expected 0.75, got %f", got)
	}
	if got := Confidence(3, 0); got != 0 {
		t.Errorf("expected 0 for zero total, got %f", got)
	}
	if got := Confidence(1, -1); got != 0 {
		t.Errorf("expected 0 for negative total, got %f", got)
	}
}

func TestClampRadius(t *testing.T) {
	cases := []struct{ in, max, want int }{
		{-5, 100, 0},
		{50, 100, 50},
		{500, 100, 100},
		{500, 0, 500},
	}
	for _, tc := range cases {
		if got := ClampRadius(tc.in, tc.max); got != tc.want {
			t.Errorf("ClampRadius(%d, %d) = %d, want %d", tc.in, tc.max, got, tc.want)
		}
	}
}

func BenchmarkCluster(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	findings := randomFindings(r, 5000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Cluster(findings, 50, 4)
	}
}
