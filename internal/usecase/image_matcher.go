package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

// Collapses every run of non-alphanumerics into one separator
var nonAlphanumericRunRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Relevance weights for picking the product whose image best fits a query
const (
	exactNameBonus     = 6
	nameContainsQuery  = 4
	queryContainsName  = 3
	queryTokenInName   = 1
	brandTokenInBrands = 2
)

// PickImage returns the image of the record most relevant to query and brand.
// Only records carrying an image field compete; ties keep upstream order.
// Returns "" when no record has an image field.
func PickImage(products []domain.RawProduct, query, brand string) string {
	withImage := make([]domain.RawProduct, 0, len(products))
	for _, p := range products {
		if p.HasImageField() {
			withImage = append(withImage, p)
		}
	}
	if len(withImage) == 0 {
		return ""
	}

	normalizedQuery := normalizeText(query)
	queryTokens := strings.Fields(normalizedQuery)
	var brandTokens []string
	if brand != "" {
		brandTokens = strings.Fields(normalizeText(brand))
	}

	scores := make([]int, len(withImage))
	for i, p := range withImage {
		scores[i] = relevanceScore(p, normalizedQuery, queryTokens, brandTokens)
	}

	order := make([]int, len(withImage))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return withImage[order[0]].Image()
}

// relevanceScore rates how well a record's name and brands match the query
func relevanceScore(p domain.RawProduct, normalizedQuery string, queryTokens, brandTokens []string) int {
	name := normalizeText(p.ProductName.Value)
	brands := normalizeText(p.Brands.Value)

	score := 0
	if name != "" && name == normalizedQuery {
		score += exactNameBonus
	}
	if name != "" && normalizedQuery != "" && strings.Contains(name, normalizedQuery) {
		score += nameContainsQuery
	}
	if normalizedQuery != "" && name != "" && strings.Contains(normalizedQuery, name) {
		score += queryContainsName
	}
	for _, token := range queryTokens {
		if strings.Contains(name, token) {
			score += queryTokenInName
		}
	}
	for _, token := range brandTokens {
		if strings.Contains(brands, token) {
			score += brandTokenInBrands
		}
	}
	return score
}

// normalizeText lowercases s and reduces it to space-separated alphanumeric words
func normalizeText(s string) string {
	s = nonAlphanumericRunRegex.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(s)
}
