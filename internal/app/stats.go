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

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "stats does not accept positional arguments")
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

	stats, err := db.QueryCorpusStats(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	lastUpdated := ""
	if stats.LastArticleUpdated != nil {
		lastUpdated = stats.LastArticleUpdated.UTC().Format(time.RFC3339)
	}

	rows := [][]string{
		{"orders", fmt.Sprintf("%d", stats.Orders)},
		{"articles", fmt.Sprintf("%d", stats.Articles)},
		{"similarities", fmt.Sprintf("%d", stats.Similarities)},
		{"novel_articles", fmt.Sprintf("%d", stats.NovelArticles)},
		{"cached_paragraphs", fmt.Sprintf("%d", stats.CachedParagraphs)},
		{"title_patterns", fmt.Sprintf("%d", stats.TitlePatterns)},
		{"category_relationships", fmt.Sprintf("%d", stats.CategoryRelationships)},
		{"last_article_updated", lastUpdated},
	}
	if err := writeTable([]string{"metric", "value"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}

	return 0
}
