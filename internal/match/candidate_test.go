package match

import (
	"context"
	"strings"
	"testing"

	"github.com/dcomatch/dcomatch/internal/config"
)

func defaultWeights() config.Weights {
	return config.Weights{
		CategoryMatch:      30,
		LengthRatioTight:   20,
		LengthRatioLoose:   10,
		ParagraphsMajority: 40,
		ParagraphsAny:      20,
		OverlapHigh:        30,
		OverlapMedium:      15,
	}
}

func TestFindCandidatesExactHashShortCircuit(t *testing.T) {
	t.Parallel()

	twin := NewArticle(Article{ID: 7, OrderID: 2, ContentHash: "hash-a", Category: "Administrative"})
	store := &fakeStore{
		byHash: map[int64]Article{2: twin},
		// Banded articles must never be consulted when the hash hits.
		bandedErr: errShouldNotBeCalled,
	}

	gen := NewGenerator(store, defaultWeights())
	source := NewArticle(Article{ID: 1, OrderID: 1, ContentHash: "hash-a", Category: "Administrative"})

	candidates, err := gen.FindCandidates(context.Background(), source, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected exactly one candidate, got %d", len(candidates))
	}
	if candidates[0].Score != 100.0 {
		t.Fatalf("expected score 100, got %f", candidates[0].Score)
	}
	if candidates[0].Article.ID != 7 {
		t.Fatalf("expected the hash twin, got article %d", candidates[0].Article.ID)
	}
}

func TestFindCandidatesDropsZeroScores(t *testing.T) {
	t.Parallel()

	source := NewArticle(Article{
		ID:       1,
		OrderID:  1,
		Category: "Rights",
		Paragraphs: []string{
			"The undertaker may acquire compulsorily the land described in the book of reference.",
		},
		WordCount: 13,
	})
	// Same category but wildly different length and zero shared words
	// beyond the category weight, which the hard filter always earns.
	stranger := NewArticle(Article{
		ID:         9,
		OrderID:    2,
		Category:   "Rights",
		Paragraphs: []string{strings.Repeat("unrelated wording entirely ", 40)},
		WordCount:  120,
	})
	store := &fakeStore{banded: map[int64][]Article{2: {stranger}}}

	gen := NewGenerator(store, defaultWeights())
	candidates, err := gen.FindCandidates(context.Background(), source, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Category still scores 30 post-filter, so the stranger survives; a
	// zero total only happens with a zero category weight.
	if len(candidates) != 1 || candidates[0].Score != 30 {
		t.Fatalf("expected single category-only candidate at 30, got %+v", candidates)
	}

	zeroCategory := defaultWeights()
	zeroCategory.CategoryMatch = 0
	gen = NewGenerator(store, zeroCategory)
	candidates, err = gen.FindCandidates(context.Background(), source, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected zero-score candidate to be dropped, got %+v", candidates)
	}
}

func TestScoreCandidateSignals(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(&fakeStore{}, defaultWeights())

	source := NewArticle(Article{
		Category: "Administrative",
		Paragraphs: []string{
			"Citation of this Order.",
			"This Order comes into force on 1 April 2020.",
		},
	})

	// Identical article: category 30 + tight length 20 + all paragraphs
	// identical 40 + full word overlap 30.
	clone := NewArticle(Article{Category: "Administrative", Paragraphs: source.Paragraphs})
	if got := gen.scoreCandidate(source, clone); got != 120 {
		t.Fatalf("identical candidate: got %f want 120", got)
	}

	// One of two paragraphs shared: paragraph count 1 is not a majority
	// of 2, so the weaker paragraph weight applies.
	half := NewArticle(Article{
		Category: "Administrative",
		Paragraphs: []string{
			"Citation of this Order.",
			"A completely different closing provision about fees and charges.",
		},
	})
	got := gen.scoreCandidate(source, half)
	want := 30.0 + 20.0 // category + ParagraphsAny; length and overlap miss their bands
	if got != want {
		t.Fatalf("half-shared candidate: got %f want %f", got, want)
	}
}

func TestScoreCandidateLengthRatioBands(t *testing.T) {
	t.Parallel()

	weights := config.Weights{LengthRatioTight: 20, LengthRatioLoose: 10}
	gen := NewGenerator(&fakeStore{}, weights)

	source := NewArticle(Article{Paragraphs: []string{strings.Repeat("a", 100)}})

	tight := NewArticle(Article{Paragraphs: []string{strings.Repeat("b", 105)}})
	if got := gen.scoreCandidate(source, tight); got != 20 {
		t.Fatalf("ratio 1.05 should earn the tight weight, got %f", got)
	}

	loose := NewArticle(Article{Paragraphs: []string{strings.Repeat("b", 115)}})
	if got := gen.scoreCandidate(source, loose); got != 10 {
		t.Fatalf("ratio 1.15 should earn the loose weight, got %f", got)
	}

	outside := NewArticle(Article{Paragraphs: []string{strings.Repeat("b", 150)}})
	if got := gen.scoreCandidate(source, outside); got != 0 {
		t.Fatalf("ratio 1.5 should earn nothing, got %f", got)
	}
}

func TestFindCandidatesSortedDescendingStable(t *testing.T) {
	t.Parallel()

	source := NewArticle(Article{
		ID:       1,
		OrderID:  1,
		Category: "Operation",
		Paragraphs: []string{
			"The generating station must be operated in accordance with this Order.",
		},
		WordCount: 11,
	})

	strong := NewArticle(Article{
		ID:         21,
		Category:   "Operation",
		Paragraphs: source.Paragraphs,
	})
	weakA := NewArticle(Article{
		ID:         22,
		Category:   "Operation",
		Paragraphs: []string{strings.Repeat("different text ", 20)},
	})
	weakB := NewArticle(Article{
		ID:         23,
		Category:   "Operation",
		Paragraphs: []string{strings.Repeat("other words ", 25)},
	})

	store := &fakeStore{banded: map[int64][]Article{3: {weakA, strong, weakB}}}
	gen := NewGenerator(store, defaultWeights())

	candidates, err := gen.FindCandidates(context.Background(), source, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected three candidates, got %d", len(candidates))
	}
	if candidates[0].Article.ID != 21 {
		t.Fatalf("expected the strong candidate first, got %d", candidates[0].Article.ID)
	}
	// The two weak candidates tie on the category weight alone and keep
	// fetch order.
	if candidates[1].Article.ID != 22 || candidates[2].Article.ID != 23 {
		t.Fatalf("expected stable tie order 22,23; got %d,%d", candidates[1].Article.ID, candidates[2].Article.ID)
	}
}

func TestWordSetOverlap(t *testing.T) {
	t.Parallel()

	full := wordSetOverlap(
		[]string{"alpha beta gamma"},
		[]string{"gamma beta alpha delta epsilon"},
	)
	if full != 1.0 {
		t.Fatalf("subset overlap should be 1.0 against the smaller set, got %f", full)
	}

	none := wordSetOverlap([]string{"alpha"}, []string{"omega"})
	if none != 0.0 {
		t.Fatalf("disjoint sets: got %f", none)
	}

	if wordSetOverlap(nil, []string{"alpha"}) != 0 {
		t.Fatalf("empty source should overlap nothing")
	}
}

func TestIdenticalParagraphCount(t *testing.T) {
	t.Parallel()

	source := []string{"First paragraph.", "  second PARAGRAPH.  ", "third"}
	candidate := []string{"first paragraph.", "Second paragraph.", "unrelated"}

	if got := identicalParagraphCount(source, candidate); got != 2 {
		t.Fatalf("expected 2 trimmed case-insensitive twins, got %d", got)
	}
}
