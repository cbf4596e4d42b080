package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dcomatch/dcomatch/internal/config"
	"github.com/dcomatch/dcomatch/internal/db"
	"github.com/dcomatch/dcomatch/internal/fingerprint"
	"github.com/dcomatch/dcomatch/internal/langdetect"
	"github.com/dcomatch/dcomatch/internal/match"
	payloadschema "github.com/dcomatch/dcomatch/schema"
)

// Service ingests validated order documents: it persists the order and
// its articles with their derived fingerprint fields, fills the
// paragraph cache, and runs the matcher over every stored article.
type Service struct {
	pool   *db.Pool
	cfg    *config.Config
	logger zerolog.Logger
}

func NewService(pool *db.Pool, cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{pool: pool, cfg: cfg, logger: logger}
}

// Result reports one document's ingest outcome. FailedArticles lists the
// article numbers whose stored rows could not be read back for matching;
// those rows are still persisted.
type Result struct {
	OrderID        int64       `json:"order_id"`
	Stats          match.Stats `json:"stats"`
	FailedArticles []string    `json:"failed_articles,omitempty"`
}

// IngestDocument stores one order document and matches each of its
// articles against every other order. The whole document runs in a
// single transaction. An article whose stored row cannot be read back is
// skipped; a store error during matching aborts and rolls back the
// document.
func (s *Service) IngestDocument(ctx context.Context, doc *payloadschema.OrderDocument) (Result, error) {
	var result Result

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	year := 0
	if doc.Year != nil {
		year = *doc.Year
	}
	siNumber := 0
	if doc.SINumber != nil {
		siNumber = *doc.SINumber
	}

	orderID, err := db.UpsertOrder(ctx, tx, strings.TrimSpace(doc.OrderName), year, siNumber)
	if err != nil {
		return result, err
	}
	result.OrderID = orderID

	seeds := buildSeeds(doc.Articles)
	upserted, err := db.UpsertArticles(ctx, tx, orderID, seeds)
	if err != nil {
		return result, err
	}

	if err := db.UpsertParagraphCache(ctx, tx, paragraphSeeds(seeds, upserted)); err != nil {
		return result, err
	}

	selector := match.NewSelector(match.NewStore(tx), s.cfg.Weights, s.cfg.Thresholds, s.logger)
	fetch := func(ctx context.Context, articleID int64) (db.ArticleProjection, error) {
		return db.FetchArticleProjection(ctx, tx, articleID)
	}
	if err := s.matchArticles(ctx, selector, fetch, seeds, upserted, &result); err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	s.logger.Info().
		Int64("order_id", orderID).
		Str("order_name", doc.OrderName).
		Int("articles", len(upserted)).
		Int("matches_written", result.Stats.MatchesWritten).
		Int("novel_articles", result.Stats.NovelArticles).
		Msg("order document ingested")

	return result, nil
}

// articleMatcher is the slice of the selector the matching loop needs.
type articleMatcher interface {
	ProcessArticle(ctx context.Context, source match.Article) (match.Stats, error)
}

// matchArticles runs the matcher over every freshly upserted row. A row
// whose stored projection cannot be read back is logged and skipped; a
// matcher error aborts the run, because it comes from a failed statement
// inside the shared transaction and every later write would fail too.
func (s *Service) matchArticles(
	ctx context.Context,
	matcher articleMatcher,
	fetch func(context.Context, int64) (db.ArticleProjection, error),
	seeds []db.ArticleSeed,
	upserted []db.UpsertedArticle,
	result *Result,
) error {
	for i, row := range upserted {
		proj, err := fetch(ctx, row.ArticleID)
		if err != nil {
			s.logger.Error().Err(err).
				Int64("article_id", row.ArticleID).
				Str("article_number", seeds[i].Number).
				Msg("refetch after upsert failed, skipping article")
			result.FailedArticles = append(result.FailedArticles, seeds[i].Number)
			continue
		}

		stats, err := matcher.ProcessArticle(ctx, projectionArticle(proj))
		result.Stats.Add(stats)
		if err != nil {
			return fmt.Errorf("match article %s: %w", proj.Number, err)
		}
	}
	return nil
}

func projectionArticle(proj db.ArticleProjection) match.Article {
	return match.NewArticle(match.Article{
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

// buildSeeds derives every fingerprint field an article row carries.
func buildSeeds(articles []payloadschema.ArticlePayload) []db.ArticleSeed {
	seeds := make([]db.ArticleSeed, 0, len(articles))
	for _, a := range articles {
		titleHash, titleWords := fingerprint.TitleSignature(a.Title)
		first := ""
		if len(a.Paragraphs) > 0 {
			first = a.Paragraphs[0]
		}
		seeds = append(seeds, db.ArticleSeed{
			Number:         strings.TrimSpace(a.Number),
			Title:          strings.TrimSpace(a.Title),
			Paragraphs:     a.Paragraphs,
			TitleHash:      titleHash,
			TitleWords:     titleWords,
			WordCount:      fingerprint.WordCount(a.Paragraphs),
			FirstParagraph: first,
			Category:       fingerprint.Categorize(a.Title),
			ContentHash:    fingerprint.ContentHash(a.Paragraphs),
			Language:       langdetect.DetectISO6391(strings.Join(a.Paragraphs, " ")),
		})
	}
	return seeds
}

func paragraphSeeds(seeds []db.ArticleSeed, upserted []db.UpsertedArticle) []db.ParagraphSeed {
	var out []db.ParagraphSeed
	for i, seed := range seeds {
		for idx, paragraph := range seed.Paragraphs {
			out = append(out, db.ParagraphSeed{
				HashID:         fingerprint.HashParagraph(paragraph),
				Text:           paragraph,
				WordCount:      len(strings.Fields(paragraph)),
				ParagraphIndex: idx,
				ArticleID:      upserted[i].ArticleID,
			})
		}
	}
	return out
}
