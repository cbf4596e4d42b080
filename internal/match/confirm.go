package match

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/dcomatch/dcomatch/internal/fingerprint"
)

// ReorderThreshold is the similarity above which paragraph order is
// inspected. Below it the reordered flag is reported false by convention;
// order carries no meaning for dissimilar content.
const ReorderThreshold = 50.0

// Confirm computes the authoritative similarity between two paragraph
// sequences: the indel ratio of the space-joined, lowercased, trimmed
// texts, scaled to [0,100]. This is the one expensive comparison in the
// pipeline (O(len×len)) and must only run on pre-filtered candidates.
func Confirm(sourceParagraphs, targetParagraphs []string) (float64, bool) {
	source := joinNormalized(sourceParagraphs)
	target := joinNormalized(targetParagraphs)

	similarity := similarityRatio(source, target)

	reordered := false
	if similarity > ReorderThreshold {
		reordered = !sameParagraphSequence(sourceParagraphs, targetParagraphs)
	}
	return similarity, reordered
}

// CompareText is the one-shot comparison entry point: the input text is
// split into paragraphs on blank lines and confirmed head to head against
// the target paragraph list. It never touches the store.
func CompareText(text string, targetParagraphs []string) (float64, bool) {
	return Confirm(SplitText(text), targetParagraphs)
}

// SplitText breaks pasted text into trimmed, non-empty paragraphs on
// blank lines, the same shape stored article text carries.
func SplitText(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

func joinNormalized(paragraphs []string) string {
	return strings.TrimSpace(strings.ToLower(strings.Join(paragraphs, " ")))
}

// similarityRatio is the indel similarity of the two strings scaled to
// [0,100]: edit distance with substitutions costing two insertions,
// normalized by the combined length. Under this metric a swapped block
// still scores through the common subsequence it preserves. Two empty
// strings are identical by definition.
func similarityRatio(a, b string) float64 {
	source := []rune(a)
	target := []rune(b)
	if len(source)+len(target) == 0 {
		return 100.0
	}
	// DefaultOptions carries substitution cost 2, which makes the ratio
	// equal (len(a)+len(b)-distance)/(len(a)+len(b)).
	return levenshtein.RatioForStrings(source, target, levenshtein.DefaultOptions) * 100.0
}

func sameParagraphSequence(source, target []string) bool {
	if len(source) != len(target) {
		return false
	}
	for i := range source {
		if fingerprint.HashParagraph(source[i]) != fingerprint.HashParagraph(target[i]) {
			return false
		}
	}
	return true
}
