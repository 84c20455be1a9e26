package lexical

import (
	"math"
	"reflect"
	"testing"
)

func TestAnalyzer_Terms(t *testing.T) {
	a := NewAnalyzer()
	got := a.Terms("The Solar POWER bank, for a 5V phone!")
	want := []string{"solar", "power", "bank", "5v", "phone", "solar power", "power bank", "bank 5v", "5v phone"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Terms() = %v, want %v", got, want)
	}
}

func TestAnalyzer_DropsShortAndStopWords(t *testing.T) {
	got := NewAnalyzer().Tokens("a I x of the and it")
	if len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestBuild_VocabularyCap(t *testing.T) {
	m := Build([]string{"alpha beta gamma", "beta alpha", "alpha"}, 2)
	if m.VocabularySize() != 2 {
		t.Fatalf("VocabularySize() = %d, want 2", m.VocabularySize())
	}
	// alpha (3) and beta (2) have the highest corpus counts.
	if _, ok := m.vocab["alpha"]; !ok {
		t.Error("expected alpha in vocabulary")
	}
	if _, ok := m.vocab["beta"]; !ok {
		t.Error("expected beta in vocabulary")
	}
}

func TestQuery_SingleDocumentSimilarity(t *testing.T) {
	m := Build([]string{"Solar Power Bank Electronics solar power bank charging"}, 0)
	hits := m.Query("solar charger", 5, 0.1)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if math.Abs(hits[0].Score-0.4) > 1e-9 {
		t.Fatalf("score = %v, want 0.4", hits[0].Score)
	}
}

func TestQuery_FloorAndRange(t *testing.T) {
	texts := []string{
		"yoga mat fitness gym",
		"steel water bottle gym",
		"cast iron pan cooking kitchen",
		"desk lamp office",
	}
	m := Build(texts, 0)

	for _, q := range []string{"gym", "yoga", "kitchen pan", "office desk lamp", "unrelated words"} {
		for _, s := range m.Score(q) {
			if s < 0 || s > 1 {
				t.Fatalf("score %v out of [0,1] for %q", s, q)
			}
		}
		for _, h := range m.Query(q, 10, 0.1) {
			if h.Score < 0.1 {
				t.Fatalf("hit below floor: %+v for %q", h, q)
			}
		}
	}

	if hits := m.Query("unrelated words", 10, 0.1); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

// The floor is inclusive: only hits strictly below minScore are dropped,
// so a hit scoring exactly the floor is kept.
func TestQuery_FloorIsInclusive(t *testing.T) {
	m := Build([]string{"Solar Power Bank Electronics solar power bank charging"}, 0)
	score := m.Score("solar charger")[0]

	if hits := m.Query("solar charger", 5, score); len(hits) != 1 || hits[0].Score != score {
		t.Fatalf("hit at the floor must be kept, got %v", hits)
	}
	if hits := m.Query("solar charger", 5, math.Nextafter(score, 1)); len(hits) != 0 {
		t.Fatalf("hit below the floor must be dropped, got %v", hits)
	}
}

func TestQuery_RankingAndTies(t *testing.T) {
	m := Build([]string{"green shoe", "red hat", "green shoe", "green green shoe"}, 0)
	hits := m.Query("green", 4, 0)
	if len(hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits not sorted desc: %+v", hits)
		}
	}
	// Docs 0 and 2 are identical; catalog order breaks the tie.
	var order []int
	for _, h := range hits {
		if h.Doc == 0 || h.Doc == 2 {
			order = append(order, h.Doc)
		}
	}
	if !reflect.DeepEqual(order, []int{0, 2}) {
		t.Fatalf("tie order = %v, want [0 2]", order)
	}
	if hits[len(hits)-1].Doc != 1 || hits[len(hits)-1].Score != 0 {
		t.Fatalf("expected unrelated doc last with zero score, got %+v", hits[len(hits)-1])
	}
}

func TestQuery_TopKTruncatesBeforeFloor(t *testing.T) {
	m := Build([]string{"gym bag", "gym shoes", "gym towel"}, 0)
	if hits := m.Query("gym", 2, 0.1); len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}

func TestQuery_Deterministic(t *testing.T) {
	texts := []string{"solar lamp garden", "solar power bank", "garden hose green", "green tea mug"}
	a := Build(texts, 0).Query("solar garden green", 4, 0)
	b := Build(texts, 0).Query("solar garden green", 4, 0)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Doc != b[i].Doc || math.Float64bits(a[i].Score) != math.Float64bits(b[i].Score) {
			t.Fatalf("hit %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestQuery_EmptyModel(t *testing.T) {
	m := Build(nil, 0)
	hits := m.Query("anything", 5, 0.1)
	if hits == nil || len(hits) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", hits)
	}
}

func TestExpandIntent(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"Gym gear", []string{"gym shoes", "water bottle", "yoga mat", "dumbbells", "athlete"}},
		{"beach travel", []string{"luggage", "backpack", "pillow", "passport holder", "swimsuit", "sunscreen", "flip flops", "beach bag", "sunglasses"}},
		{" garden ", []string{"garden"}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			if got := ExpandIntent(tc.query); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExpandIntent(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}
