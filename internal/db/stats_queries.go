package db

import (
	"context"
	"fmt"
	"time"
)

// CorpusStats summarizes the stored corpus and match results.
type CorpusStats struct {
	Orders                int64      `json:"orders"`
	Articles              int64      `json:"articles"`
	Similarities          int64      `json:"similarities"`
	NovelArticles         int64      `json:"novel_articles"`
	CachedParagraphs      int64      `json:"cached_paragraphs"`
	TitlePatterns         int64      `json:"title_patterns"`
	CategoryRelationships int64      `json:"category_relationships"`
	LastArticleUpdated    *time.Time `json:"last_article_updated,omitempty"`
}

// QueryCorpusStats counts rows across every table in one round trip.
func QueryCorpusStats(ctx context.Context, q Querier) (*CorpusStats, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM orders),
	(SELECT COUNT(*) FROM articles),
	(SELECT COUNT(*) FROM similarities),
	(SELECT COUNT(*) FROM articles WHERE novel = TRUE),
	(SELECT COUNT(*) FROM paragraph_cache),
	(SELECT COUNT(*) FROM title_patterns),
	(SELECT COUNT(*) FROM category_relationships),
	(SELECT MAX(updated_at) FROM articles)
`
	var stats CorpusStats
	if err := q.QueryRow(ctx, query).Scan(
		&stats.Orders,
		&stats.Articles,
		&stats.Similarities,
		&stats.NovelArticles,
		&stats.CachedParagraphs,
		&stats.TitlePatterns,
		&stats.CategoryRelationships,
		&stats.LastArticleUpdated,
	); err != nil {
		return nil, fmt.Errorf("query corpus stats: %w", err)
	}
	return &stats, nil
}
