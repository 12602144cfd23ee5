package model

import "strings"

// DefaultCategories is the category list prefilled on the upload form and
// used when the run command is given none.
const DefaultCategories = "Technology, Finance, Health, Sports, Entertainment"

// ParseCategories splits a comma-separated category string into an ordered
// label set. Entries are whitespace-trimmed and empties dropped; duplicates
// are kept as supplied.
func ParseCategories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if c := strings.TrimSpace(part); c != "" {
			out = append(out, c)
		}
	}
	return out
}
