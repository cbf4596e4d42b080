package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/dcomatch/dcomatch/internal/fingerprint"
)

// TextQuery is an ad hoc comparison request against the stored corpus.
// Category is optional; when set, candidates are restricted to it the
// same way stored articles are.
type TextQuery struct {
	Paragraphs []string
	Category   string
}

// OrderMatch is one order's best counterpart for queried text.
type OrderMatch struct {
	OrderID       int64
	ArticleID     int64
	ArticleNumber string
	ArticleTitle  string
	Category      string
	Similarity    float64
	Reordered     bool
}

// SearchCorpus confirms ad hoc text against every stored order and
// returns one best counterpart per order above the persist floor,
// highest similarity first. Nothing is persisted; the novelty flag and
// the pattern tables belong to stored articles only.
func (s *Selector) SearchCorpus(ctx context.Context, query TextQuery) ([]OrderMatch, error) {
	source := NewArticle(Article{
		Paragraphs:  query.Paragraphs,
		Category:    query.Category,
		ContentHash: fingerprint.ContentHash(query.Paragraphs),
		WordCount:   fingerprint.WordCount(query.Paragraphs),
	})

	orderIDs, err := s.store.TargetOrderIDs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list target orders: %w", err)
	}

	var matches []OrderMatch
	for _, targetOrderID := range orderIDs {
		candidates, err := s.generator.FindCandidates(ctx, source, targetOrderID)
		if err != nil {
			return nil, err
		}

		var best *OrderMatch
		for _, candidate := range candidates {
			similarity, reordered := Confirm(source.Paragraphs, candidate.Article.Paragraphs)
			if similarity > s.thresholds.PersistFloor && (best == nil || similarity > best.Similarity) {
				best = &OrderMatch{
					OrderID:       targetOrderID,
					ArticleID:     candidate.Article.ID,
					ArticleNumber: candidate.Article.Number,
					ArticleTitle:  candidate.Article.Title,
					Category:      candidate.Article.Category,
					Similarity:    similarity,
					Reordered:     reordered,
				}
			}
			if similarity >= s.thresholds.EarlyExit {
				break
			}
		}
		if best != nil {
			matches = append(matches, *best)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}
