package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dcomatch/dcomatch/internal/match"
)

type compareInput struct {
	Text        string   `json:"text"`
	TargetTexts []string `json:"target_texts"`
}

type compareOutput struct {
	Similarity float64 `json:"similarity"`
	Reordered  bool    `json:"reordered"`
}

// runCompare reads one JSON request from stdin and writes the comparison
// result to stdout. It never touches the database.
func runCompare(args []string) int {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "compare reads its JSON request from stdin and accepts no positional arguments")
		return 2
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read stdin: %v\n", err)
		return 1
	}

	var input compareInput
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request JSON: %v\n", err)
		return 2
	}
	if strings.TrimSpace(input.Text) == "" {
		fmt.Fprintln(os.Stderr, "Request field \"text\" is required")
		return 2
	}
	if len(input.TargetTexts) == 0 {
		fmt.Fprintln(os.Stderr, "Request field \"target_texts\" must not be empty")
		return 2
	}

	similarity, reordered := match.CompareText(input.Text, input.TargetTexts)

	encoder := json.NewEncoder(os.Stdout)
	if err := encoder.Encode(compareOutput{Similarity: similarity, Reordered: reordered}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		return 1
	}
	return 0
}
