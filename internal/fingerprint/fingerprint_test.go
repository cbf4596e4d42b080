package fingerprint

import (
	"strings"
	"testing"
)

func TestContentHashIgnoresParagraphSplit(t *testing.T) {
	t.Parallel()

	left := ContentHash([]string{"alpha", "beta"})
	right := ContentHash([]string{"alphabeta"})
	if left != right {
		t.Fatalf("expected identical hashes for identical concatenations")
	}

	different := ContentHash([]string{"alpha", "gamma"})
	if left == different {
		t.Fatalf("expected different hashes for different content")
	}
}

func TestTitleSignatureOrderInsensitive(t *testing.T) {
	t.Parallel()

	hashA, wordsA := TitleSignature("Maintenance of drainage Works")
	hashB, wordsB := TitleSignature("works Drainage of maintenance")
	if hashA != hashB {
		t.Fatalf("expected order-insensitive title hashes to match")
	}
	if strings.Join(wordsA, " ") != "maintenance of drainage works" {
		t.Fatalf("unexpected word list: %v", wordsA)
	}
	if strings.Join(wordsB, " ") != "works drainage of maintenance" {
		t.Fatalf("expected word list to preserve original order, got %v", wordsB)
	}
}

func TestCategorizeIsDeterministic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title string
		want  string
	}{
		{"Citation and commencement", CategoryAdministrative},
		{"CITATION AND COMMENCEMENT", CategoryAdministrative},
		{"Construction of the new bridge", CategoryInfrastructure},
		{"Compulsory acquisition of land", CategoryRights},
		{"Protective works to trees", CategoryInfrastructure},
		{"Interpretation", CategoryInterpretation},
		{"Operation of the generating station", CategoryOperation},
		{"Miscellaneous provisions", CategoryOther},
	}
	for _, tc := range cases {
		if got := Categorize(tc.title); got != tc.want {
			t.Fatalf("Categorize(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestCategorizePrecedence(t *testing.T) {
	t.Parallel()

	// "maintenance" (Infrastructure) and "water" (Environmental) both
	// match; the earlier category in enumeration order wins.
	if got := Categorize("Maintenance of water mains"); got != CategoryInfrastructure {
		t.Fatalf("expected Infrastructure precedence, got %q", got)
	}
	// "transfer" (Administrative) precedes "powers" (Rights).
	if got := Categorize("Transfer of powers"); got != CategoryAdministrative {
		t.Fatalf("expected Administrative precedence, got %q", got)
	}
}

func TestWordCountBandWidths(t *testing.T) {
	t.Parallel()

	min, max := WordCountBand(40)
	if min != 20 || max != 80 {
		t.Fatalf("short band: got [%f,%f], want [20,80]", min, max)
	}

	min, max = WordCountBand(100)
	if min != 60 || max != 160 {
		t.Fatalf("medium band: got [%f,%f], want [60,160]", min, max)
	}

	min, max = WordCountBand(200)
	if min != 140 || max != 260 {
		t.Fatalf("long band: got [%f,%f], want [140,260]", min, max)
	}
}

func TestWordCountBandBoundariesInclusive(t *testing.T) {
	t.Parallel()

	// A candidate at exactly 0.7×W must pass the band filter for W>=200.
	min, max := WordCountBand(300)
	candidate := 210.0
	if candidate < min || candidate > max {
		t.Fatalf("expected %f to fall inside [%f,%f]", candidate, min, max)
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	got := WordCount([]string{"The Order comes into force.", "It applies  to Devon."})
	if got != 9 {
		t.Fatalf("unexpected word count: got %d want 9", got)
	}
	if WordCount(nil) != 0 {
		t.Fatalf("expected zero count for no paragraphs")
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("abcde", 30)
	sig := Signature(long)
	if sig.Length != 150 {
		t.Fatalf("unexpected length: %d", sig.Length)
	}
	if len(sig.Head) != 50 || len(sig.Tail) != 50 {
		t.Fatalf("unexpected head/tail lengths: %d/%d", len(sig.Head), len(sig.Tail))
	}

	short := Signature("tiny")
	if short.Head != "tiny" || short.Tail != "tiny" || short.Length != 4 {
		t.Fatalf("unexpected short signature: %+v", short)
	}
}
