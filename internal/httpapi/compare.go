package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dcomatch/dcomatch/internal/db"
	"github.com/dcomatch/dcomatch/internal/fingerprint"
	"github.com/dcomatch/dcomatch/internal/match"
)

type compareRequest struct {
	Text        string   `json:"text"`
	TargetTexts []string `json:"target_texts"`
}

type compareResponse struct {
	Similarity float64 `json:"similarity"`
	Reordered  bool    `json:"reordered"`
}

// handleCompare runs a head-to-head comparison between submitted text and
// a target paragraph list without consulting the store.
func (s *Server) handleCompare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return failValidation(c, map[string]string{"text": "is required"})
	}
	if len(req.TargetTexts) == 0 {
		return failValidation(c, map[string]string{"target_texts": "must not be empty"})
	}

	similarity, reordered := match.CompareText(req.Text, req.TargetTexts)
	return success(c, compareResponse{Similarity: similarity, Reordered: reordered})
}

type corpusCompareRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type corpusMatchItem struct {
	OrderID       int64   `json:"order_id"`
	OrderName     string  `json:"order_name"`
	OrderYear     int     `json:"order_year"`
	ArticleID     int64   `json:"article_id"`
	ArticleNumber string  `json:"article_number"`
	ArticleTitle  string  `json:"article_title"`
	Category      string  `json:"category"`
	Similarity    float64 `json:"similarity"`
	Reordered     bool    `json:"reordered"`
}

// handleCorpusCompare runs submitted text through the candidate filters
// against the stored corpus and returns the best counterpart per order,
// highest similarity first. Category narrows the search when given.
func (s *Server) handleCorpusCompare(c echo.Context) error {
	var req corpusCompareRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	paragraphs := match.SplitText(req.Text)
	if len(paragraphs) == 0 {
		return failValidation(c, map[string]string{"text": "is required"})
	}

	ctx := c.Request().Context()
	selector := match.NewSelector(match.NewStore(s.pool), s.cfg.Weights, s.cfg.Thresholds, s.logger)
	matches, err := selector.SearchCorpus(ctx, match.TextQuery{
		Paragraphs: paragraphs,
		Category:   strings.TrimSpace(req.Category),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("corpus comparison failed")
		return internalError(c, "Failed to compare against stored orders")
	}

	items := make([]corpusMatchItem, 0, len(matches))
	if len(matches) > 0 {
		headers, err := db.ListOrderHeaders(ctx, s.pool)
		if err != nil {
			s.logger.Error().Err(err).Msg("load order headers failed")
			return internalError(c, "Failed to compare against stored orders")
		}
		for _, m := range matches {
			header := headers[m.OrderID]
			items = append(items, corpusMatchItem{
				OrderID:       m.OrderID,
				OrderName:     header.Name,
				OrderYear:     header.Year,
				ArticleID:     m.ArticleID,
				ArticleNumber: m.ArticleNumber,
				ArticleTitle:  m.ArticleTitle,
				Category:      m.Category,
				Similarity:    m.Similarity,
				Reordered:     m.Reordered,
			})
		}
	}

	return success(c, map[string]any{
		"word_count": fingerprint.WordCount(paragraphs),
		"matches":    items,
	})
}
