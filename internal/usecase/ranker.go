package usecase

import (
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

// DefaultMaxAlternatives caps every alternatives list
const DefaultMaxAlternatives = 6

// Sentinels for candidates without a grade
const (
	unscoredEco   = "?"
	unscoredNutri = domain.Unknown
)

// ecoBuckets is the fixed best-first bucket order; "?" collects everything else
var ecoBuckets = []string{"A", "B", "C", "D", "E", unscoredEco}

// rankedCandidate is a database record projected for ranking
type rankedCandidate struct {
	name       string
	brand      string
	score      string
	nutriScore string
	details    domain.ProductDetails
}

// PickAlternatives filters candidates to those at least as good as the
// thresholds on both eco and nutri grades, drops excludeName, orders them
// by eco grade bucket (stable within a bucket), collapses brand+name repeats
// and keeps the first limit. Unscored candidates rank last but are returned
// with A-E grades like every other product.
func PickAlternatives(
	candidates []domain.RawProduct,
	ecoThreshold, nutriThreshold, excludeName string,
	limit int,
) []domain.ProductDetails {
	if limit <= 0 {
		limit = DefaultMaxAlternatives
	}

	ecoRank := ScoreRank(ecoThreshold)
	nutriRank := ScoreRank(nutriThreshold)

	buckets := make(map[string][]domain.ProductDetails, len(ecoBuckets))
	for _, raw := range candidates {
		if !raw.ProductName.Present {
			continue
		}
		c := projectCandidate(raw)
		if c.name == "" || strings.EqualFold(c.name, excludeName) {
			continue
		}
		if ScoreRank(c.score) > ecoRank || ScoreRank(c.nutriScore) > nutriRank {
			continue
		}
		key := c.score
		if _, ok := scoreRanks[key]; !ok {
			key = unscoredEco
		}
		buckets[key] = append(buckets[key], c.details)
	}

	var ordered []domain.ProductDetails
	for _, key := range ecoBuckets {
		ordered = append(ordered, buckets[key]...)
	}

	picked := MergeAlternatives(ordered, nil, limit)
	for i := range picked {
		picked[i].Ecoscore = NormalizeScore(picked[i].Ecoscore)
		picked[i].Nutriscore = NormalizeScore(picked[i].Nutriscore)
	}
	return picked
}

// MergeAlternatives appends extra to primary, collapsing entries that share
// brand and name. A repeated key keeps its first position but takes the
// later value. The result is capped at limit.
func MergeAlternatives(primary, extra []domain.ProductDetails, limit int) []domain.ProductDetails {
	if limit <= 0 {
		limit = DefaultMaxAlternatives
	}

	index := make(map[string]int, len(primary)+len(extra))
	merged := make([]domain.ProductDetails, 0, len(primary)+len(extra))
	for _, list := range [][]domain.ProductDetails{primary, extra} {
		for _, alt := range list {
			key := alt.Brand + "-" + alt.Name
			if i, ok := index[key]; ok {
				merged[i] = alt
				continue
			}
			index[key] = len(merged)
			merged = append(merged, alt)
		}
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// projectCandidate converts a raw record into its display and ranking form
func projectCandidate(p domain.RawProduct) rankedCandidate {
	score := unscoredEco
	if p.EcoscoreGrade.Present {
		score = strings.ToUpper(p.EcoscoreGrade.Value)
	}
	nutri := unscoredNutri
	if p.NutriscoreGrade.Present {
		nutri = strings.ToUpper(p.NutriscoreGrade.Value)
	}

	c := rankedCandidate{
		name:       strings.TrimSpace(p.ProductName.Value),
		brand:      primaryBrand(p.Brands),
		score:      score,
		nutriScore: nutri,
	}
	c.details = domain.ProductDetails{
		Name:        c.name,
		Brand:       c.brand,
		Categories:  FormatTags(p.CategoriesTags, domain.Unknown),
		Packaging:   FormatTags(p.PackagingTags, domain.Unknown),
		Labels:      FormatTags(p.LabelsTags, domain.Unknown),
		Ingredients: ingredientsText(p.IngredientsText),
		Ecoscore:    score,
		Nutriscore:  nutri,
		ImageURL:    p.Image(),
	}
	return c
}

// primaryBrand returns the first comma-separated brand, or "Unknown"
func primaryBrand(brands domain.OptString) string {
	if !brands.Present || brands.Value == "" {
		return domain.Unknown
	}
	return strings.TrimSpace(strings.Split(brands.Value, ",")[0])
}

func ingredientsText(v domain.OptString) string {
	if s := strings.TrimSpace(v.Value); v.Present && s != "" {
		return s
	}
	return domain.Unknown
}
