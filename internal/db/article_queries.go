package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ArticleSeed carries one article's text and derived fields into the
// upsert. Derived fields are computed by the caller before persistence.
type ArticleSeed struct {
	Number         string
	Title          string
	Paragraphs     []string
	TitleHash      string
	TitleWords     []string
	WordCount      int
	FirstParagraph string
	Category       string
	ContentHash    string
	Language       string
}

// UpsertedArticle is the row state returned by an article upsert.
type UpsertedArticle struct {
	ArticleID  int64
	Paragraphs []string
}

// ArticleProjection is the transient in-memory view the matcher operates
// on; it never outlives a run.
type ArticleProjection struct {
	ArticleID   int64
	OrderID     int64
	Number      string
	Title       string
	Paragraphs  []string
	ContentHash string
	TitleHash   string
	Category    string
	WordCount   int
}

// UpsertArticles inserts or updates one order's articles keyed by
// (order_id, article_number) and returns the current row per article.
// Conflicts are the idempotent-merge path, never an error.
func UpsertArticles(ctx context.Context, q Querier, orderID int64, seeds []ArticleSeed) ([]UpsertedArticle, error) {
	const query = `
INSERT INTO articles (
	order_id, article_number, article_title, article_text,
	title_hash, title_words, word_count, first_paragraph,
	category, content_hash, language
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (order_id, article_number) DO UPDATE SET
	article_title = EXCLUDED.article_title,
	article_text = EXCLUDED.article_text,
	title_hash = EXCLUDED.title_hash,
	title_words = EXCLUDED.title_words,
	word_count = EXCLUDED.word_count,
	first_paragraph = EXCLUDED.first_paragraph,
	category = EXCLUDED.category,
	content_hash = EXCLUDED.content_hash,
	language = EXCLUDED.language,
	updated_at = now()
RETURNING article_id, article_text
`
	results := make([]UpsertedArticle, 0, len(seeds))
	for _, seed := range seeds {
		textJSON, err := json.Marshal(seed.Paragraphs)
		if err != nil {
			return nil, fmt.Errorf("encode paragraphs for article %q: %w", seed.Number, err)
		}
		wordsJSON, err := json.Marshal(seed.TitleWords)
		if err != nil {
			return nil, fmt.Errorf("encode title words for article %q: %w", seed.Number, err)
		}

		var (
			articleID int64
			rawText   []byte
		)
		err = q.QueryRow(ctx, query,
			orderID, seed.Number, seed.Title, string(textJSON),
			seed.TitleHash, string(wordsJSON), seed.WordCount, seed.FirstParagraph,
			seed.Category, seed.ContentHash, seed.Language,
		).Scan(&articleID, &rawText)
		if err != nil {
			return nil, fmt.Errorf("upsert article %q: %w", seed.Number, err)
		}

		var paragraphs []string
		if err := json.Unmarshal(rawText, &paragraphs); err != nil {
			return nil, fmt.Errorf("decode stored paragraphs for article %q: %w", seed.Number, err)
		}
		results = append(results, UpsertedArticle{ArticleID: articleID, Paragraphs: paragraphs})
	}
	return results, nil
}

// FetchArticleProjection refetches one article's metadata after upsert.
func FetchArticleProjection(ctx context.Context, q Querier, articleID int64) (ArticleProjection, error) {
	const query = `
SELECT article_id, order_id, article_number, article_title, article_text,
       content_hash, title_hash, category, word_count
FROM articles
WHERE article_id = $1
`
	var (
		proj    ArticleProjection
		rawText []byte
	)
	err := q.QueryRow(ctx, query, articleID).Scan(
		&proj.ArticleID,
		&proj.OrderID,
		&proj.Number,
		&proj.Title,
		&rawText,
		&proj.ContentHash,
		&proj.TitleHash,
		&proj.Category,
		&proj.WordCount,
	)
	if err != nil {
		return ArticleProjection{}, fmt.Errorf("fetch article %d: %w", articleID, err)
	}
	if err := json.Unmarshal(rawText, &proj.Paragraphs); err != nil {
		return ArticleProjection{}, fmt.Errorf("decode paragraphs for article %d: %w", articleID, err)
	}
	return proj, nil
}

// ArticleByHash finds an article in the target order with the exact
// content hash. found is false when no such article exists.
func ArticleByHash(ctx context.Context, q Querier, orderID int64, contentHash string) (ArticleProjection, bool, error) {
	const query = `
SELECT article_id, order_id, article_number, article_title, article_text,
       content_hash, title_hash, category, word_count
FROM articles
WHERE order_id = $1 AND content_hash = $2
LIMIT 1
`
	var (
		proj    ArticleProjection
		rawText []byte
	)
	err := q.QueryRow(ctx, query, orderID, contentHash).Scan(
		&proj.ArticleID,
		&proj.OrderID,
		&proj.Number,
		&proj.Title,
		&rawText,
		&proj.ContentHash,
		&proj.TitleHash,
		&proj.Category,
		&proj.WordCount,
	)
	if IsNoRows(err) {
		return ArticleProjection{}, false, nil
	}
	if err != nil {
		return ArticleProjection{}, false, fmt.Errorf("query article by hash: %w", err)
	}
	if err := json.Unmarshal(rawText, &proj.Paragraphs); err != nil {
		return ArticleProjection{}, false, fmt.Errorf("decode paragraphs: %w", err)
	}
	return proj, true, nil
}

// ArticlesByBand lists articles of one order whose word count falls in
// the inclusive [minWords,maxWords] band and whose category matches. An
// empty category matches every category. Rows come back in article_id
// order, which is the tie order downstream.
func ArticlesByBand(ctx context.Context, q Querier, orderID int64, minWords, maxWords float64, category string) ([]ArticleProjection, error) {
	const query = `
SELECT article_id, order_id, article_number, article_title, article_text,
       content_hash, title_hash, category, word_count
FROM articles
WHERE order_id = $1
  AND word_count BETWEEN $2 AND $3
  AND ($4::text = '' OR category = $4)
ORDER BY article_id
`
	rows, err := q.Query(ctx, query, orderID, minWords, maxWords, category)
	if err != nil {
		return nil, fmt.Errorf("query banded articles: %w", err)
	}
	defer rows.Close()

	var projections []ArticleProjection
	for rows.Next() {
		var (
			proj    ArticleProjection
			rawText []byte
		)
		if err := rows.Scan(
			&proj.ArticleID,
			&proj.OrderID,
			&proj.Number,
			&proj.Title,
			&rawText,
			&proj.ContentHash,
			&proj.TitleHash,
			&proj.Category,
			&proj.WordCount,
		); err != nil {
			return nil, fmt.Errorf("scan banded article: %w", err)
		}
		if err := json.Unmarshal(rawText, &proj.Paragraphs); err != nil {
			return nil, fmt.Errorf("decode paragraphs for article %d: %w", proj.ArticleID, err)
		}
		projections = append(projections, proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banded articles: %w", err)
	}
	return projections, nil
}

// SetArticleNovelty records whether an article has any counterpart.
func SetArticleNovelty(ctx context.Context, q Querier, articleID int64, novel bool) error {
	const query = `UPDATE articles SET novel = $1, updated_at = now() WHERE article_id = $2`
	if _, err := q.Exec(ctx, query, novel, articleID); err != nil {
		return fmt.Errorf("set novelty for article %d: %w", articleID, err)
	}
	return nil
}

// NovelArticle is one row of the novel-articles listing.
type NovelArticle struct {
	ArticleID      int64     `json:"article_id"`
	OrderName      string    `json:"order_name"`
	OrderYear      int       `json:"order_year"`
	ArticleNumber  string    `json:"article_number"`
	ArticleTitle   string    `json:"article_title"`
	Category       string    `json:"category"`
	WordCount      int       `json:"word_count"`
	FirstParagraph string    `json:"first_paragraph"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListNovelArticles lists articles flagged novel, newest first.
func ListNovelArticles(ctx context.Context, q Querier, limit int) ([]NovelArticle, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	const query = `
SELECT a.article_id, o.order_name, o.order_year, a.article_number,
       a.article_title, a.category, a.word_count, a.first_paragraph,
       a.updated_at
FROM articles a
JOIN orders o ON o.order_id = a.order_id
WHERE a.novel = TRUE
ORDER BY a.updated_at DESC, a.article_id DESC
LIMIT $1
`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query novel articles: %w", err)
	}
	defer rows.Close()

	items := make([]NovelArticle, 0, limit)
	for rows.Next() {
		var row NovelArticle
		if err := rows.Scan(
			&row.ArticleID,
			&row.OrderName,
			&row.OrderYear,
			&row.ArticleNumber,
			&row.ArticleTitle,
			&row.Category,
			&row.WordCount,
			&row.FirstParagraph,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan novel article: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate novel articles: %w", err)
	}
	return items, nil
}
