package match

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dcomatch/dcomatch/internal/config"
)

var errShouldNotBeCalled = errors.New("store method must not be called")

type simRecord struct {
	sourceID  int64
	targetID  int64
	orderID   int64
	score     float64
	reordered bool
}

type patternRecord struct {
	source string
	target string
	score  float64
}

// fakeStore is an in-memory Store for generator and selector tests.
type fakeStore struct {
	orders    []int64
	byHash    map[int64]Article
	banded    map[int64][]Article
	bandedErr error

	similarities []simRecord
	novelty      map[int64]bool
	titles       []patternRecord
	categories   []patternRecord
}

func (f *fakeStore) TargetOrderIDs(_ context.Context, _ int64) ([]int64, error) {
	return f.orders, nil
}

func (f *fakeStore) ArticleByHash(_ context.Context, orderID int64, contentHash string) (Article, bool, error) {
	if a, ok := f.byHash[orderID]; ok && a.ContentHash == contentHash {
		return a, true, nil
	}
	return Article{}, false, nil
}

func (f *fakeStore) ArticlesByBand(_ context.Context, orderID int64, _, _ float64, _ string) ([]Article, error) {
	if f.bandedErr != nil {
		return nil, f.bandedErr
	}
	return f.banded[orderID], nil
}

func (f *fakeStore) UpsertSimilarity(_ context.Context, sourceID, targetID, orderID int64, score float64, reordered bool) error {
	f.similarities = append(f.similarities, simRecord{sourceID, targetID, orderID, score, reordered})
	return nil
}

func (f *fakeStore) SetArticleNovelty(_ context.Context, articleID int64, novel bool) error {
	if f.novelty == nil {
		f.novelty = make(map[int64]bool)
	}
	f.novelty[articleID] = novel
	return nil
}

func (f *fakeStore) UpsertTitlePattern(_ context.Context, sourceHash, targetHash string, score float64) error {
	f.titles = append(f.titles, patternRecord{sourceHash, targetHash, score})
	return nil
}

func (f *fakeStore) UpsertCategoryRelationship(_ context.Context, sourceCategory, targetCategory string, score float64) error {
	f.categories = append(f.categories, patternRecord{sourceCategory, targetCategory, score})
	return nil
}

func defaultThresholds() config.Thresholds {
	return config.Thresholds{EarlyExit: 95, PersistFloor: 50}
}

func newTestSelector(store *fakeStore) *Selector {
	return NewSelector(store, defaultWeights(), defaultThresholds(), zerolog.Nop())
}

func devonArticle(id, orderID int64) Article {
	return NewArticle(Article{
		ID:        id,
		OrderID:   orderID,
		Number:    "2",
		Title:     "Application of this Order",
		TitleHash: "title-hash",
		Category:  "Other",
		Paragraphs: []string{
			"The Order comes into force on 1 April 2020.",
			"It applies to the county of Devon.",
		},
		WordCount: 16,
	})
}

func TestProcessArticleIdenticalCounterpart(t *testing.T) {
	t.Parallel()

	source := devonArticle(1, 1)
	target := devonArticle(10, 2)
	target.ContentHash = "same-hash"
	source.ContentHash = "same-hash"

	store := &fakeStore{
		orders: []int64{2},
		byHash: map[int64]Article{2: target},
	}

	stats, err := newTestSelector(store).ProcessArticle(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.similarities) != 1 {
		t.Fatalf("expected one similarity record, got %d", len(store.similarities))
	}
	rec := store.similarities[0]
	if rec.sourceID != 1 || rec.targetID != 10 || rec.orderID != 2 {
		t.Fatalf("unexpected similarity record: %+v", rec)
	}
	if rec.score != 100.0 || rec.reordered {
		t.Fatalf("expected perfect unreordered match, got score=%f reordered=%t", rec.score, rec.reordered)
	}
	if store.novelty[1] {
		t.Fatalf("article with a perfect counterpart must not be novel")
	}
	if stats.MatchesWritten != 1 || stats.NovelArticles != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestProcessArticleNovelWhenNothingClearsFloor(t *testing.T) {
	t.Parallel()

	source := devonArticle(1, 1)
	source.ContentHash = "source-hash"

	weak := NewArticle(Article{
		ID:         20,
		OrderID:    2,
		Category:   "Other",
		TitleHash:  "weak-title",
		Paragraphs: []string{"zzz qqq vvv kkk jjj www yyy uuu ppp mmm nnn bbb ccc ddd"},
		WordCount:  14,
	})

	store := &fakeStore{
		orders: []int64{2},
		banded: map[int64][]Article{2: {weak}},
	}

	stats, err := newTestSelector(store).ProcessArticle(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.similarities) != 0 {
		t.Fatalf("expected zero similarity records below the floor, got %d", len(store.similarities))
	}
	if !store.novelty[1] {
		t.Fatalf("expected the article to be flagged novel")
	}
	if len(store.titles) != 0 || len(store.categories) != 0 {
		t.Fatalf("pattern tables must not learn from rejected matches")
	}
	if stats.NovelArticles != 1 || stats.MatchesWritten != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ComparisonsPerformed != 1 {
		t.Fatalf("expected one confirmation, got %d", stats.ComparisonsPerformed)
	}
}

func TestProcessArticleEarlyExitStopsConfirming(t *testing.T) {
	t.Parallel()

	source := devonArticle(1, 1)
	source.ContentHash = "source-hash"

	perfect := devonArticle(30, 2)
	perfect.ContentHash = "other-hash"
	// Ranked after perfect only if its heuristic score is lower; give it
	// nothing in common beyond the category filter.
	alsoThere := NewArticle(Article{
		ID:         31,
		OrderID:    2,
		Category:   "Other",
		TitleHash:  "late-title",
		Paragraphs: []string{"completely unrelated wording that never gets confirmed"},
		WordCount:  8,
	})

	store := &fakeStore{
		orders: []int64{2},
		banded: map[int64][]Article{2: {perfect, alsoThere}},
	}

	stats, err := newTestSelector(store).ProcessArticle(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.ComparisonsPerformed != 1 {
		t.Fatalf("expected early exit after the first confirmation, got %d comparisons", stats.ComparisonsPerformed)
	}
	if len(store.similarities) != 1 || store.similarities[0].targetID != 30 {
		t.Fatalf("expected the perfect candidate to win: %+v", store.similarities)
	}
}

func TestProcessArticleOneBestMatchPerOrder(t *testing.T) {
	t.Parallel()

	source := devonArticle(1, 1)
	source.ContentHash = "source-hash"

	matchA := devonArticle(40, 2)
	matchA.ContentHash = "hash-a"
	matchA.TitleHash = "title-a"
	matchB := devonArticle(50, 3)
	matchB.ContentHash = "hash-b"
	matchB.TitleHash = "title-b"

	store := &fakeStore{
		orders: []int64{2, 3},
		banded: map[int64][]Article{2: {matchA}, 3: {matchB}},
	}

	stats, err := newTestSelector(store).ProcessArticle(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.similarities) != 2 {
		t.Fatalf("expected one record per order, got %d", len(store.similarities))
	}
	seen := map[int64]bool{}
	for _, rec := range store.similarities {
		if seen[rec.orderID] {
			t.Fatalf("duplicate record for order %d", rec.orderID)
		}
		seen[rec.orderID] = true
	}
	if len(store.titles) != 2 || len(store.categories) != 2 {
		t.Fatalf("expected the learner to record once per confirmed order match, got %d/%d",
			len(store.titles), len(store.categories))
	}
	if stats.OrdersSearched != 2 || stats.MatchesWritten != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLearnerRecordsBothAggregates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	learner := NewLearner(store)

	source := Article{TitleHash: "src-title", Category: "Administrative"}
	best := BestMatch{TargetTitleHash: "dst-title", TargetCategory: "Interpretation", Similarity: 87.5}

	if err := learner.RecordMatch(context.Background(), source, best); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.titles) != 1 || store.titles[0] != (patternRecord{"src-title", "dst-title", 87.5}) {
		t.Fatalf("unexpected title pattern records: %+v", store.titles)
	}
	if len(store.categories) != 1 || store.categories[0] != (patternRecord{"Administrative", "Interpretation", 87.5}) {
		t.Fatalf("unexpected category records: %+v", store.categories)
	}
}
