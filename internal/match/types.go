package match

import "strings"

// Article is the transient projection the matcher works on. Length is the
// character length of the space-joined paragraph text; it is derived once
// so candidate scoring never re-joins.
type Article struct {
	ID          int64
	OrderID     int64
	Number      string
	Title       string
	Paragraphs  []string
	ContentHash string
	TitleHash   string
	Category    string
	WordCount   int
	Length      int
}

// NewArticle fills the derived Length field.
func NewArticle(a Article) Article {
	a.Length = len(strings.Join(a.Paragraphs, " "))
	return a
}

// Candidate pairs a heuristic score with a plausible counterpart article.
type Candidate struct {
	Score   float64
	Article Article
}

// BestMatch is the winning candidate for one target order.
type BestMatch struct {
	TargetArticleID int64
	TargetTitleHash string
	TargetCategory  string
	Similarity      float64
	Reordered       bool
}

// Stats accumulates per-run counters; it replaces run-global mutable
// state so callers can report without sharing process state.
type Stats struct {
	ArticlesProcessed    int `json:"articles_processed"`
	OrdersSearched       int `json:"orders_searched"`
	CandidatesScored     int `json:"candidates_scored"`
	ComparisonsPerformed int `json:"comparisons_performed"`
	MatchesWritten       int `json:"matches_written"`
	NovelArticles        int `json:"novel_articles"`
}

// Add folds other into s.
func (s *Stats) Add(other Stats) {
	s.ArticlesProcessed += other.ArticlesProcessed
	s.OrdersSearched += other.OrdersSearched
	s.CandidatesScored += other.CandidatesScored
	s.ComparisonsPerformed += other.ComparisonsPerformed
	s.MatchesWritten += other.MatchesWritten
	s.NovelArticles += other.NovelArticles
}
