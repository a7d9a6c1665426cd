package predict

import "strings"

// DetectRosterNews reports whether any headline or description mentions a keyword.
// Matching is a case-insensitive substring search.
func DetectRosterNews(items []NewsItem, keywords []string) bool {
	for _, item := range items {
		text := strings.ToLower(item.Headline + "\n" + item.Description)
		for _, k := range keywords {
			k = strings.ToLower(trimmed(k))
			if k != "" && strings.Contains(text, k) {
				return true
			}
		}
	}
	return false
}
