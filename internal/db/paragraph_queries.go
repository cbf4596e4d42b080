package db

import (
	"context"
	"fmt"
)

// ParagraphSeed is one paragraph headed for the content-addressed cache.
type ParagraphSeed struct {
	HashID         string
	Text           string
	WordCount      int
	ParagraphIndex int
	ArticleID      int64
}

// UpsertParagraphCache stores paragraphs keyed by content hash. A hash
// that already exists is left untouched; redundant insertion is a no-op.
func UpsertParagraphCache(ctx context.Context, q Querier, seeds []ParagraphSeed) error {
	const query = `
INSERT INTO paragraph_cache (hash_id, paragraph_text, word_count, paragraph_index, article_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (hash_id) DO NOTHING
`
	for _, seed := range seeds {
		if _, err := q.Exec(ctx, query,
			seed.HashID, seed.Text, seed.WordCount, seed.ParagraphIndex, seed.ArticleID,
		); err != nil {
			return fmt.Errorf("cache paragraph %s: %w", seed.HashID, err)
		}
	}
	return nil
}
