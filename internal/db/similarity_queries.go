package db

import (
	"context"
	"fmt"
	"time"
)

// UpsertSimilarity records the best match for (source article, target
// order). Re-computation overwrites target, score and reordered flag
// rather than inserting a second row.
func UpsertSimilarity(ctx context.Context, q Querier, sourceArticleID, targetArticleID, targetOrderID int64, score float64, reordered bool) error {
	const query = `
INSERT INTO similarities (
	source_article_id, target_article_id, target_order_id,
	similarity_score, reordered
)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (source_article_id, target_order_id) DO UPDATE SET
	target_article_id = EXCLUDED.target_article_id,
	similarity_score = EXCLUDED.similarity_score,
	reordered = EXCLUDED.reordered,
	updated_at = now()
`
	if _, err := q.Exec(ctx, query, sourceArticleID, targetArticleID, targetOrderID, score, reordered); err != nil {
		return fmt.Errorf("upsert similarity %d->%d: %w", sourceArticleID, targetOrderID, err)
	}
	return nil
}

// SimilarityDetail is one row of the per-article similarity listing.
type SimilarityDetail struct {
	SimilarityID    int64     `json:"similarity_id"`
	Similarity      float64   `json:"similarity"`
	Reordered       bool      `json:"reordered"`
	TargetArticleID int64     `json:"target_article_id"`
	ArticleNumber   string    `json:"article_number"`
	ArticleTitle    string    `json:"article_title"`
	FirstParagraph  string    `json:"first_paragraph"`
	Category        string    `json:"category"`
	WordCount       int       `json:"word_count"`
	OrderID         int64     `json:"order_id"`
	OrderName       string    `json:"order_name"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListSimilarities lists a source article's per-order best matches,
// highest score first.
func ListSimilarities(ctx context.Context, q Querier, sourceArticleID int64) ([]SimilarityDetail, error) {
	const query = `
SELECT s.id, s.similarity_score, s.reordered,
       ta.article_id, ta.article_number, ta.article_title,
       ta.first_paragraph, ta.category, ta.word_count,
       o.order_id, o.order_name, s.updated_at
FROM similarities s
JOIN articles ta ON ta.article_id = s.target_article_id
JOIN orders o ON o.order_id = s.target_order_id
WHERE s.source_article_id = $1
ORDER BY s.similarity_score DESC
`
	rows, err := q.Query(ctx, query, sourceArticleID)
	if err != nil {
		return nil, fmt.Errorf("query similarities: %w", err)
	}
	defer rows.Close()

	var items []SimilarityDetail
	for rows.Next() {
		var row SimilarityDetail
		if err := rows.Scan(
			&row.SimilarityID,
			&row.Similarity,
			&row.Reordered,
			&row.TargetArticleID,
			&row.ArticleNumber,
			&row.ArticleTitle,
			&row.FirstParagraph,
			&row.Category,
			&row.WordCount,
			&row.OrderID,
			&row.OrderName,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity rows: %w", err)
	}
	return items, nil
}
