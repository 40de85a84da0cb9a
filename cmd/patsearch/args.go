package main

import (
	"flag"
	"fmt"
	"strings"
)

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: patsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Filters are combined with AND; a patent must satisfy every filter given.
  • --classification matches the start of the classification code (case-sensitive).
  • --title matches anywhere in the title, ignoring case.
  • --keyword requires a full-text match on the patent text.

Examples:
  patsearch search electric vehicle battery
  patsearch search "electric vehicle battery"          # same as above
  patsearch search --classification B60 wheel bearing
  patsearch search --output json --top-k 20 your query
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops at the
// first non-flag argument, so "patsearch search wheel --top-k 5" would otherwise leave
// --top-k unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}
