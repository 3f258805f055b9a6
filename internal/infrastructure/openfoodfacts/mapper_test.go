package openfoodfacts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenscanner/backend/internal/domain"
)

func TestDecodeSearchResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []domain.RawProduct
	}{
		{
			name: "complete record",
			body: `{"products":[{
				"product_name":"Spaghetti","brands":"Barilla, Barilla Group",
				"ecoscore_grade":"a","nutriscore_grade":"b",
				"categories_tags":["en:plant-based-foods","en:pastas"],
				"packaging_tags":["en:cardboard"],"labels_tags":[],
				"ingredients_text":"durum wheat semolina",
				"image_url":"https://img/1.jpg","image_front_url":"https://img/front.jpg"}]}`,
			want: []domain.RawProduct{{
				ProductName:     domain.Some("Spaghetti"),
				Brands:          domain.Some("Barilla, Barilla Group"),
				EcoscoreGrade:   domain.Some("a"),
				NutriscoreGrade: domain.Some("b"),
				CategoriesTags:  domain.SomeList("en:plant-based-foods", "en:pastas"),
				PackagingTags:   domain.SomeList("en:cardboard"),
				LabelsTags:      domain.OptStrings{Present: true},
				IngredientsText: domain.Some("durum wheat semolina"),
				ImageURL:        domain.Some("https://img/1.jpg"),
				ImageFrontURL:   domain.Some("https://img/front.jpg"),
			}},
		},
		{
			name: "wrongly typed fields read as absent",
			body: `{"products":[{"product_name":42,"brands":null,"categories_tags":"en:pastas","ecoscore_grade":["a"]}]}`,
			want: []domain.RawProduct{{}},
		},
		{
			name: "non-object entries are skipped",
			body: `{"products":["junk",null,7,{"product_name":"Kept"}]}`,
			want: []domain.RawProduct{{ProductName: domain.Some("Kept")}},
		},
		{
			name: "scalar tags are kept as text, objects dropped",
			body: `{"products":[{"labels_tags":["en:organic",3,true,{"x":1},null]}]}`,
			want: []domain.RawProduct{{LabelsTags: domain.SomeList("en:organic", "3", "true")}},
		},
		{
			name: "missing products array",
			body: `{"count":0}`,
			want: []domain.RawProduct{},
		},
		{
			name: "products is not an array",
			body: `{"products":{"product_name":"x"}}`,
			want: []domain.RawProduct{},
		},
		{
			name: "upstream order is preserved",
			body: `{"products":[{"product_name":"B"},{"product_name":"A"}]}`,
			want: []domain.RawProduct{{ProductName: domain.Some("B")}, {ProductName: domain.Some("A")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSearchResponse([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, got)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeSearchResponse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeSearchResponse_InvalidJSON(t *testing.T) {
	got, err := DecodeSearchResponse([]byte("<html>maintenance</html>"))

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
