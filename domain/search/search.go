package search

import (
	"strconv"
	"strings"
)

// Query represents the structured parameters for a message search.
// It decouples the raw chat input from the actual index engine requirements.
type Query struct {
	RawInput string // The original input from the user
	Terms    string // The actual text to match against message content
	From     string // Restrict to messages sent by this user
	With     string // Restrict to conversations involving this user
	Limit    int    // Pagination: number of results
}

// NewQuery parses a raw string to extract command-line style arguments.
// Example: /find "invoice" --from alice --with bob --limit 5
func NewQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    10, // Default limit
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Handle flags like --from alice or --limit 5
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "from":
				query.From = val
			case "with":
				query.With = val
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, strings.Trim(part, `"`))
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
