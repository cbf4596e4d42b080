package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "compare":
		return runCompare(args[1:])
	case "serve":
		return runServe(args[1:])
	case "stats":
		return runStats(args[1:])
	case "novel":
		return runNovel(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "dcomatch CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  dcomatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health   Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  ingest   Ingest order document JSON files and run matching")
	fmt.Fprintln(os.Stderr, "  compare  Compare text against target paragraphs (JSON on stdin)")
	fmt.Fprintln(os.Stderr, "  serve    Start Echo API server")
	fmt.Fprintln(os.Stderr, "  stats    Show corpus and match statistics")
	fmt.Fprintln(os.Stderr, "  novel    List articles with no counterpart in any order")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"dcomatch <command> -h\" for command-specific flags.")
}
