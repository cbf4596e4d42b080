package match

import (
	"context"

	"github.com/dcomatch/dcomatch/internal/db"
)

// Store is the slice of the persistence gateway the matcher needs. All
// writes are atomic upserts keyed by natural unique keys, so concurrent
// runs over independent articles serialize in the store, not here.
type Store interface {
	TargetOrderIDs(ctx context.Context, exceptOrderID int64) ([]int64, error)
	ArticleByHash(ctx context.Context, orderID int64, contentHash string) (Article, bool, error)
	ArticlesByBand(ctx context.Context, orderID int64, minWords, maxWords float64, category string) ([]Article, error)
	UpsertSimilarity(ctx context.Context, sourceArticleID, targetArticleID, targetOrderID int64, score float64, reordered bool) error
	SetArticleNovelty(ctx context.Context, articleID int64, novel bool) error
	UpsertTitlePattern(ctx context.Context, sourceHash, targetHash string, score float64) error
	UpsertCategoryRelationship(ctx context.Context, sourceCategory, targetCategory string, score float64) error
}

// NewStore binds Store to a database querier (pool or transaction).
func NewStore(q db.Querier) Store {
	return &dbStore{q: q}
}

type dbStore struct {
	q db.Querier
}

func (s *dbStore) TargetOrderIDs(ctx context.Context, exceptOrderID int64) ([]int64, error) {
	return db.TargetOrderIDs(ctx, s.q, exceptOrderID)
}

func (s *dbStore) ArticleByHash(ctx context.Context, orderID int64, contentHash string) (Article, bool, error) {
	proj, found, err := db.ArticleByHash(ctx, s.q, orderID, contentHash)
	if err != nil || !found {
		return Article{}, found, err
	}
	return fromProjection(proj), true, nil
}

func (s *dbStore) ArticlesByBand(ctx context.Context, orderID int64, minWords, maxWords float64, category string) ([]Article, error) {
	projections, err := db.ArticlesByBand(ctx, s.q, orderID, minWords, maxWords, category)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(projections))
	for _, proj := range projections {
		articles = append(articles, fromProjection(proj))
	}
	return articles, nil
}

func (s *dbStore) UpsertSimilarity(ctx context.Context, sourceArticleID, targetArticleID, targetOrderID int64, score float64, reordered bool) error {
	return db.UpsertSimilarity(ctx, s.q, sourceArticleID, targetArticleID, targetOrderID, score, reordered)
}

func (s *dbStore) SetArticleNovelty(ctx context.Context, articleID int64, novel bool) error {
	return db.SetArticleNovelty(ctx, s.q, articleID, novel)
}

func (s *dbStore) UpsertTitlePattern(ctx context.Context, sourceHash, targetHash string, score float64) error {
	return db.UpsertTitlePattern(ctx, s.q, sourceHash, targetHash, score)
}

func (s *dbStore) UpsertCategoryRelationship(ctx context.Context, sourceCategory, targetCategory string, score float64) error {
	return db.UpsertCategoryRelationship(ctx, s.q, sourceCategory, targetCategory, score)
}

func fromProjection(proj db.ArticleProjection) Article {
	return NewArticle(Article{
		ID:          proj.ArticleID,
		OrderID:     proj.OrderID,
		Number:      proj.Number,
		Title:       proj.Title,
		Paragraphs:  proj.Paragraphs,
		ContentHash: proj.ContentHash,
		TitleHash:   proj.TitleHash,
		Category:    proj.Category,
		WordCount:   proj.WordCount,
	})
}
