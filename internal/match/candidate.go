package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dcomatch/dcomatch/internal/config"
	"github.com/dcomatch/dcomatch/internal/fingerprint"
)

// exactMatchScore is the score of the hash short-circuit phase. It is an
// unconditional override, not a sum of heuristic signals.
const exactMatchScore = 100.0

// Generator ranks plausible counterparts of a source article within one
// target order, cheapest checks first.
type Generator struct {
	store   Store
	weights config.Weights
}

func NewGenerator(store Store, weights config.Weights) *Generator {
	return &Generator{store: store, weights: weights}
}

// FindCandidates returns candidates sorted by descending heuristic score.
//
// Phase one checks for an exact content-hash twin; a hit returns exactly
// that one candidate at the maximum score and skips every other signal.
// Phase two fetches articles inside the source's word-count band with the
// same category (category mismatch is a hard filter here; an empty source
// category searches every category) and scores each additively. Zero-score candidates are dropped. Equal scores keep fetch
// order; ties have no defined total order.
func (g *Generator) FindCandidates(ctx context.Context, source Article, targetOrderID int64) ([]Candidate, error) {
	exact, found, err := g.store.ArticleByHash(ctx, targetOrderID, source.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("exact hash lookup in order %d: %w", targetOrderID, err)
	}
	if found {
		return []Candidate{{Score: exactMatchScore, Article: exact}}, nil
	}

	minWords, maxWords := fingerprint.WordCountBand(source.WordCount)
	targets, err := g.store.ArticlesByBand(ctx, targetOrderID, minWords, maxWords, source.Category)
	if err != nil {
		return nil, fmt.Errorf("banded fetch in order %d: %w", targetOrderID, err)
	}

	candidates := make([]Candidate, 0, len(targets))
	for _, target := range targets {
		score := g.scoreCandidate(source, target)
		if score > 0 {
			candidates = append(candidates, Candidate{Score: score, Article: target})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

// scoreCandidate sums independent structural signals. The category weight
// is always earned after the hard filter; it stays in the sum so the
// scorer keeps working if the filter is ever relaxed.
func (g *Generator) scoreCandidate(source, candidate Article) float64 {
	score := 0.0

	if source.Category == candidate.Category {
		score += g.weights.CategoryMatch
	}

	if source.Length > 0 {
		ratio := float64(candidate.Length) / float64(source.Length)
		switch {
		case ratio >= 0.9 && ratio <= 1.1:
			score += g.weights.LengthRatioTight
		case ratio >= 0.8 && ratio <= 1.2:
			score += g.weights.LengthRatioLoose
		}
	}

	identical := identicalParagraphCount(source.Paragraphs, candidate.Paragraphs)
	if identical > len(source.Paragraphs)/2 {
		score += g.weights.ParagraphsMajority
	} else if identical > 0 {
		score += g.weights.ParagraphsAny
	}

	overlap := wordSetOverlap(source.Paragraphs, candidate.Paragraphs)
	if overlap > 0.8 {
		score += g.weights.OverlapHigh
	} else if overlap > 0.6 {
		score += g.weights.OverlapMedium
	}

	return score
}

// identicalParagraphCount counts source paragraphs with a case-insensitive,
// whitespace-trimmed exact twin in the candidate.
func identicalParagraphCount(source, candidate []string) int {
	normalized := make(map[string]int, len(candidate))
	for _, p := range candidate {
		normalized[normalizeParagraph(p)]++
	}

	count := 0
	for _, p := range source {
		if normalized[normalizeParagraph(p)] > 0 {
			count++
		}
	}
	return count
}

func normalizeParagraph(p string) string {
	return strings.TrimSpace(strings.ToLower(p))
}

// wordSetOverlap is |intersection| / min(|source|, |candidate|) over
// lowercase whitespace-split tokens.
func wordSetOverlap(source, candidate []string) float64 {
	sourceWords := wordSet(source)
	candidateWords := wordSet(candidate)
	if len(sourceWords) == 0 || len(candidateWords) == 0 {
		return 0
	}

	smaller, larger := sourceWords, candidateWords
	if len(candidateWords) < len(sourceWords) {
		smaller, larger = candidateWords, sourceWords
	}

	intersection := 0
	for word := range smaller {
		if _, ok := larger[word]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(smaller))
}

func wordSet(paragraphs []string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, p := range paragraphs {
		for _, w := range strings.Fields(strings.ToLower(p)) {
			words[w] = struct{}{}
		}
	}
	return words
}
