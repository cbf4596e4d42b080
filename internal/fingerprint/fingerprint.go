package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Category labels assigned to articles by title keyword matching.
const (
	CategoryAdministrative = "Administrative"
	CategoryInfrastructure = "Infrastructure"
	CategoryRights         = "Rights"
	CategoryEnvironmental  = "Environmental"
	CategoryInterpretation = "Interpretation"
	CategoryOperation      = "Operation"
	CategoryOther          = "Other"
)

// categoryKeywords is evaluated in slice order; the first category with a
// matching keyword wins, so precedence is deterministic.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryAdministrative, []string{
		"citation", "commencement", "certification", "transfer", "benefit",
		"consent", "incorporation", "enforcement", "appeals", "procedure",
	}},
	{CategoryInfrastructure, []string{
		"construction", "maintenance", "works", "bridge", "tunnel",
		"railway", "highway", "street", "road", "access",
	}},
	{CategoryRights, []string{
		"compulsory acquisition", "rights", "powers", "authority", "stopping up",
		"closure", "suspension", "restrictions", "prohibition",
	}},
	{CategoryEnvironmental, []string{
		"trees", "hedgerow", "conservation", "drainage", "water",
		"marine", "survey", "investigation", "environmental", "protection",
	}},
	{CategoryInterpretation, []string{"interpret", "meaning", "definition"}},
	{CategoryOperation, []string{"operation", "use", "generating", "operational"}},
}

// HashParagraph returns the content hash of a single paragraph.
func HashParagraph(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ContentHash hashes the concatenation of all paragraphs with no separator.
// Two different paragraph splits that concatenate to the same string hash
// identically; callers that care about ordering use the per-paragraph hash
// sequence instead.
func ContentHash(paragraphs []string) string {
	h := sha256.New()
	for _, p := range paragraphs {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// TitleSignature returns a hash over the sorted lowercase title words plus
// the lowercase word list. Sorting makes the hash insensitive to word
// order, which catches reworded titles.
func TitleSignature(title string) (string, []string) {
	fields := strings.Fields(title)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		words = append(words, strings.ToLower(w))
	}
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, " ")))
	return hex.EncodeToString(sum[:]), words
}

// Categorize maps a title to a category label by case-insensitive
// substring match. Returns CategoryOther when no keyword matches.
func Categorize(title string) string {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// TextSignature is a cheap structural fingerprint of a joined article
// text: character length plus the first and last 50 characters. It is a
// pre-filter hint only, never a correctness guarantee.
type TextSignature struct {
	Length int
	Head   string
	Tail   string
}

// Signature computes the TextSignature of joined article text.
func Signature(joined string) TextSignature {
	runes := []rune(joined)
	head := runes
	if len(head) > 50 {
		head = head[:50]
	}
	tail := runes
	if len(tail) > 50 {
		tail = tail[len(tail)-50:]
	}
	return TextSignature{
		Length: len(runes),
		Head:   string(head),
		Tail:   string(tail),
	}
}

// WordCount counts whitespace-separated tokens across all paragraphs.
func WordCount(paragraphs []string) int {
	count := 0
	for _, p := range paragraphs {
		count += len(strings.Fields(p))
	}
	return count
}

// WordCountBand returns the inclusive [min,max] word-count range a
// candidate must fall in. Short articles vary proportionally more due to
// boilerplate, so the band widens as articles shrink.
func WordCountBand(wordCount int) (float64, float64) {
	w := float64(wordCount)
	switch {
	case wordCount < 50:
		return w * 0.5, w * 2.0
	case wordCount < 200:
		return w * 0.6, w * 1.6
	default:
		return w * 0.7, w * 1.3
	}
}
