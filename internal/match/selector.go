package match

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dcomatch/dcomatch/internal/config"
)

// Selector runs the best-match search for one new article against every
// historical order and persists the outcome.
type Selector struct {
	store      Store
	generator  *Generator
	learner    *Learner
	thresholds config.Thresholds
	logger     zerolog.Logger
}

func NewSelector(store Store, weights config.Weights, thresholds config.Thresholds, logger zerolog.Logger) *Selector {
	return &Selector{
		store:      store,
		generator:  NewGenerator(store, weights),
		learner:    NewLearner(store),
		thresholds: thresholds,
		logger:     logger,
	}
}

// ProcessArticle searches every other order for the article's best
// counterpart, writes one similarity row per order that produced a match
// above the persist floor, updates the pattern aggregates, and flags the
// article novel when no order qualified. Candidates are confirmed in
// score order with an early exit once a match reaches the accept
// threshold.
func (s *Selector) ProcessArticle(ctx context.Context, source Article) (Stats, error) {
	var stats Stats
	stats.ArticlesProcessed = 1

	orderIDs, err := s.store.TargetOrderIDs(ctx, source.OrderID)
	if err != nil {
		return stats, fmt.Errorf("list target orders: %w", err)
	}

	bestMatches := make(map[int64]BestMatch)

	for _, targetOrderID := range orderIDs {
		stats.OrdersSearched++

		candidates, err := s.generator.FindCandidates(ctx, source, targetOrderID)
		if err != nil {
			return stats, err
		}
		stats.CandidatesScored += len(candidates)

		for _, candidate := range candidates {
			// A previous candidate may already have cleared the accept
			// threshold for this order.
			if best, ok := bestMatches[targetOrderID]; ok && best.Similarity >= s.thresholds.EarlyExit {
				break
			}

			similarity, reordered := Confirm(source.Paragraphs, candidate.Article.Paragraphs)
			stats.ComparisonsPerformed++

			if similarity > s.thresholds.PersistFloor {
				if best, ok := bestMatches[targetOrderID]; !ok || similarity > best.Similarity {
					bestMatches[targetOrderID] = BestMatch{
						TargetArticleID: candidate.Article.ID,
						TargetTitleHash: candidate.Article.TitleHash,
						TargetCategory:  candidate.Article.Category,
						Similarity:      similarity,
						Reordered:       reordered,
					}
				}
			}

			if similarity >= s.thresholds.EarlyExit {
				s.logger.Debug().
					Int64("article_id", source.ID).
					Int64("target_order_id", targetOrderID).
					Int64("target_article_id", candidate.Article.ID).
					Float64("similarity", similarity).
					Msg("accepted high-similarity match early")
				break
			}
		}
	}

	novel := len(bestMatches) == 0
	if err := s.store.SetArticleNovelty(ctx, source.ID, novel); err != nil {
		return stats, err
	}
	if novel {
		stats.NovelArticles++
		s.logger.Info().
			Int64("article_id", source.ID).
			Str("article_number", source.Number).
			Msg("article has no counterpart in any order")
	}

	for targetOrderID, best := range bestMatches {
		if err := s.store.UpsertSimilarity(ctx, source.ID, best.TargetArticleID, targetOrderID, best.Similarity, best.Reordered); err != nil {
			return stats, err
		}
		stats.MatchesWritten++

		if err := s.learner.RecordMatch(ctx, source, best); err != nil {
			return stats, err
		}
	}

	return stats, nil
}
