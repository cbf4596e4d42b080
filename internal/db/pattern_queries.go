package db

import (
	"context"
	"fmt"
)

// UpsertTitlePattern folds one confirmed match into the (source title
// hash, target title hash) aggregate using the online-average rule:
// avg' = (avg*freq + score) / (freq+1), then freq' = freq+1.
func UpsertTitlePattern(ctx context.Context, q Querier, sourceHash, targetHash string, score float64) error {
	const query = `
INSERT INTO title_patterns (source_hash, target_hash, frequency, avg_content_similarity)
VALUES ($1, $2, 1, $3)
ON CONFLICT (source_hash, target_hash) DO UPDATE SET
	avg_content_similarity =
		(title_patterns.avg_content_similarity * title_patterns.frequency + EXCLUDED.avg_content_similarity)
		/ (title_patterns.frequency + 1),
	frequency = title_patterns.frequency + 1
`
	if _, err := q.Exec(ctx, query, sourceHash, targetHash, score); err != nil {
		return fmt.Errorf("upsert title pattern: %w", err)
	}
	return nil
}

// UpsertCategoryRelationship is the category-level twin of
// UpsertTitlePattern, keyed by (source category, target category).
func UpsertCategoryRelationship(ctx context.Context, q Querier, sourceCategory, targetCategory string, score float64) error {
	const query = `
INSERT INTO category_relationships (source_category, target_category, frequency, avg_similarity)
VALUES ($1, $2, 1, $3)
ON CONFLICT (source_category, target_category) DO UPDATE SET
	avg_similarity =
		(category_relationships.avg_similarity * category_relationships.frequency + EXCLUDED.avg_similarity)
		/ (category_relationships.frequency + 1),
	frequency = category_relationships.frequency + 1
`
	if _, err := q.Exec(ctx, query, sourceCategory, targetCategory, score); err != nil {
		return fmt.Errorf("upsert category relationship: %w", err)
	}
	return nil
}
