package usecase

import (
	"regexp"
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

// Matches a two-letter locale prefix such as "en:" or "fr:" on a taxonomy tag
var localePrefixRegex = regexp.MustCompile(`^[a-z]{2}:`)

// scoreRanks orders grades from best to worst; anything absent ranks after E
var scoreRanks = map[string]int{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5}

// unrankedScore is the rank of "?", "Unknown" and every unrecognised grade
const unrankedScore = 6

// defaultScore is shown whenever no grade could be resolved
const defaultScore = "C"

// FormatTags turns raw taxonomy tags into a display string.
// "en:plastic-bottle" becomes "plastic bottle"; surviving tags are joined with ", ".
// A tags value that is not present, or that yields nothing, returns fallback.
func FormatTags(tags domain.OptStrings, fallback string) string {
	if !tags.Present {
		return fallback
	}
	cleaned := make([]string, 0, len(tags.Values))
	for _, tag := range tags.Values {
		tag = localePrefixRegex.ReplaceAllString(tag, "")
		tag = strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return strings.Join(cleaned, ", ")
}

// ScoreRank maps A..E to 1..5 and anything else to 6. Comparison only.
func ScoreRank(letter string) int {
	if rank, ok := scoreRanks[strings.ToUpper(letter)]; ok {
		return rank
	}
	return unrankedScore
}

// NormalizeScore returns an A-E grade, defaulting unresolved input to "C"
func NormalizeScore(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := scoreRanks[s]; ok {
		return s
	}
	return defaultScore
}

// NormalizeField trims raw and substitutes fallback for "" or "unknown"
func NormalizeField(raw, fallback string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, domain.Unknown) {
		return fallback
	}
	return s
}

// IsUnknownScore reports whether a grade is empty, "?" or "UNKNOWN"
func IsUnknownScore(value string) bool {
	s := strings.ToUpper(strings.TrimSpace(value))
	return s == "" || s == "?" || s == "UNKNOWN"
}

// IsValidImageURL accepts only http(s) URLs and inline image data URLs
func IsValidImageURL(value string) bool {
	return strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "data:image")
}

// GoodChoiceMessage picks the analysis line and alternatives heading
func GoodChoiceMessage(eco, nutri string) (analysis, alternativesTitle string) {
	if strings.EqualFold(eco, "A") || strings.EqualFold(nutri, "A") {
		return "your product is already a good choice!", "Some other choices..."
	}
	return "Yum, but you have better options ;)", "You may want to consider..."
}
