package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dcomatch/dcomatch/internal/cli"
	"github.com/dcomatch/dcomatch/internal/db"
)

func runNovel(args []string) int {
	fs := flag.NewFlagSet("novel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	limit := fs.Int("limit", 100, "Maximum number of articles to list")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "novel does not accept positional arguments")
		return 2
	}
	if *limit <= 0 || *limit > 1000 {
		fmt.Fprintln(os.Stderr, "--limit must be between 1 and 1000")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	items, err := db.ListNovelArticles(ctx, pool, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query novel articles: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ArticleID),
			truncateForTable(item.OrderName, 48),
			item.ArticleNumber,
			truncateForTable(item.ArticleTitle, 48),
			item.Category,
			fmt.Sprintf("%d", item.WordCount),
			item.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeTable(
		[]string{"article_id", "order", "number", "title", "category", "words", "updated_at"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}

	fmt.Printf("\n%d novel article(s)\n", len(items))
	return 0
}
