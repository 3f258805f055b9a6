package openfoodfacts

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/greenscanner/backend/internal/domain"
)

// DecodeSearchResponse extracts the products array of a search response.
// A body that is not JSON is an error; a missing or non-array "products"
// is an empty result. Non-object entries are skipped and every field is
// decoded by type, so unexpected shapes read as absent.
func DecodeSearchResponse(body []byte) ([]domain.RawProduct, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: search response is not valid JSON", domain.ErrUpstreamUnavailable)
	}

	products := gjson.GetBytes(body, "products")
	if !products.IsArray() {
		return []domain.RawProduct{}, nil
	}

	items := products.Array()
	out := make([]domain.RawProduct, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		out = append(out, decodeProduct(item))
	}
	return out, nil
}

func decodeProduct(r gjson.Result) domain.RawProduct {
	return domain.RawProduct{
		ProductName:     optString(r.Get("product_name")),
		Brands:          optString(r.Get("brands")),
		EcoscoreGrade:   optString(r.Get("ecoscore_grade")),
		NutriscoreGrade: optString(r.Get("nutriscore_grade")),
		CategoriesTags:  optStrings(r.Get("categories_tags")),
		PackagingTags:   optStrings(r.Get("packaging_tags")),
		LabelsTags:      optStrings(r.Get("labels_tags")),
		IngredientsText: optString(r.Get("ingredients_text")),
		ImageURL:        optString(r.Get("image_url")),
		ImageFrontURL:   optString(r.Get("image_front_url")),
	}
}

// optString is present only for JSON strings
func optString(r gjson.Result) domain.OptString {
	if r.Type != gjson.String {
		return domain.OptString{}
	}
	return domain.Some(r.Str)
}

// optStrings is present only for JSON arrays; scalar elements are kept as
// text, nested objects and nulls are dropped
func optStrings(r gjson.Result) domain.OptStrings {
	if !r.IsArray() {
		return domain.OptStrings{}
	}
	var values []string
	r.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.String, gjson.Number, gjson.True, gjson.False:
			values = append(values, v.String())
		}
		return true
	})
	return domain.OptStrings{Values: values, Present: true}
}
