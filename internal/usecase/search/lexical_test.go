package search

import (
	"testing"

	"github.com/trovato-shop/trovato/internal/domain"
)

func TestNormalizeLexical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Adidas Café-Racer", "adidas cafe racer"},
		{"  AirPods   Pro! ", "airpods pro"},
		{"Noise-Cancelling (ANC)", "noise cancelling anc"},
		{"ÉLÉGANCE №5", "elegance 5"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeLexical(tt.in); got != tt.want {
			t.Errorf("normalizeLexical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScoreLexical_Ranking(t *testing.T) {
	items := []domain.Item{
		domain.NewItem("name-hit", "Running Shoes", domain.CategoryShoes, "Asics", "", nil),
		domain.NewItem("feature-hit", "Trail Pro", domain.CategoryShoes, "Asics", "", []string{"running", "waterproof"}),
		domain.NewItem("miss", "Leather Wallet", domain.CategoryAccessories, "Bellroy", "", nil),
	}

	matches := scoreLexical(items, []string{"running"})
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	// A name hit outranks a feature-only hit.
	if matches[0].Item.ID() != "name-hit" || matches[1].Item.ID() != "feature-hit" {
		t.Errorf("order: %s, %s", matches[0].Item.ID(), matches[1].Item.ID())
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores: %f vs %f", matches[0].Score, matches[1].Score)
	}
	for _, m := range matches {
		if m.Source != domain.RankLexical {
			t.Errorf("source = %s", m.Source)
		}
	}
}

func TestScoreLexical_ShortKeywordsIgnored(t *testing.T) {
	items := []domain.Item{
		domain.NewItem("a", "A Thing", domain.CategoryTech, "", "", nil),
	}
	if matches := scoreLexical(items, []string{"a", "of", ""}); matches != nil {
		t.Errorf("short keywords must not score: %+v", matches)
	}
}

func TestScoreLexical_DiacriticsFold(t *testing.T) {
	items := []domain.Item{
		domain.NewItem("a", "Café Noir Eau de Parfum", domain.CategoryFragrance, "", "", nil),
	}
	matches := scoreLexical(items, []string{"cafe"})
	if len(matches) != 1 {
		t.Fatalf("expected a diacritic-insensitive match, got %+v", matches)
	}
}

func TestMergeRanked(t *testing.T) {
	candidates := []domain.Item{
		domain.NewItem("a", "A", domain.CategoryTech, "", "", nil),
		domain.NewItem("b", "B", domain.CategoryTech, "", "", nil),
		domain.NewItem("c", "C", domain.CategoryTech, "", "", nil),
	}

	// 5 is out of range, the repeat of 1 must be dropped.
	matches := mergeRanked(candidates, []int{1, 5, 1, 0}, 8)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	wantOrder := []string{"b", "a", "c"}
	for i, want := range wantOrder {
		if matches[i].Item.ID() != want {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].Item.ID(), want)
		}
	}
	if matches[0].Source != domain.RankVisual || matches[2].Source != domain.RankUnranked {
		t.Errorf("sources: %s, %s", matches[0].Source, matches[2].Source)
	}
}

func TestMergeRanked_Truncates(t *testing.T) {
	candidates := []domain.Item{
		domain.NewItem("a", "A", domain.CategoryTech, "", "", nil),
		domain.NewItem("b", "B", domain.CategoryTech, "", "", nil),
		domain.NewItem("c", "C", domain.CategoryTech, "", "", nil),
	}
	if matches := mergeRanked(candidates, []int{2, 1, 0}, 2); len(matches) != 2 {
		t.Errorf("expected truncation to 2, got %d", len(matches))
	}
}
