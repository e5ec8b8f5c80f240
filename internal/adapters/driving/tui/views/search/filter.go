package search

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// ParseQuery splits search input into free text and filters.
// Recognised filters are course:NAME, course:"NAME WITH SPACES" and lesson:N.
// A lesson value that is not a number is kept as query text.
func ParseQuery(input string) domain.SearchQuery {
	var q domain.SearchQuery
	var words []string

	rest := strings.TrimSpace(input)
	for rest != "" {
		token, remaining := nextToken(rest)
		rest = strings.TrimSpace(remaining)

		switch {
		case strings.HasPrefix(token, "course:"):
			name := strings.Trim(strings.TrimPrefix(token, "course:"), `"`)
			if name != "" {
				q.CourseName = &name
			}
		case strings.HasPrefix(token, "lesson:"):
			n, err := strconv.Atoi(strings.TrimPrefix(token, "lesson:"))
			if err != nil {
				words = append(words, token)
				continue
			}
			q.LessonNumber = &n
		default:
			words = append(words, token)
		}
	}

	q.Query = strings.Join(words, " ")
	return q
}

// nextToken returns the first whitespace-delimited token of s. A double
// quote directly after a filter key extends the token to the closing quote.
func nextToken(s string) (string, string) {
	if i := strings.Index(s, `:"`); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		if end := strings.Index(s[i+2:], `"`); end >= 0 {
			cut := i + 2 + end + 1
			return s[:cut], s[cut:]
		}
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
