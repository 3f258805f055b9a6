package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenscanner/backend/internal/domain"
)

func TestFormatTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     domain.OptStrings
		fallback string
		want     string
	}{
		{"locale prefix and hyphens", domain.SomeList("en:plastic-bottle", "fr:carton"), domain.Unknown, "plastic bottle, carton"},
		{"no prefix", domain.SomeList("organic"), domain.Unknown, "organic"},
		{"uppercase prefix is kept", domain.SomeList("EN:thing"), domain.Unknown, "EN:thing"},
		{"three-letter prefix is kept", domain.SomeList("eng:thing"), domain.Unknown, "eng:thing"},
		{"blank tags dropped", domain.SomeList("en:", " - ", "en:glass"), domain.Unknown, "glass"},
		{"empty list", domain.SomeList(), domain.Unknown, domain.Unknown},
		{"only blanks", domain.SomeList("", "en:"), "Estimated", "Estimated"},
		{"absent field", domain.OptStrings{}, domain.Unknown, domain.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTags(tt.tags, tt.fallback)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestScoreRank(t *testing.T) {
	order := []string{"A", "B", "C", "D", "E", "?"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, ScoreRank(order[i-1]), ScoreRank(order[i]), "%s should rank before %s", order[i-1], order[i])
	}

	assert.Equal(t, 1, ScoreRank("a"))
	assert.Equal(t, ScoreRank("?"), ScoreRank("Unknown"))
	assert.Equal(t, ScoreRank("?"), ScoreRank("F"))
	assert.Equal(t, ScoreRank("?"), ScoreRank(""))
	assert.Equal(t, ScoreRank("?"), ScoreRank("not-applicable"))
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a", "A"},
		{" e ", "E"},
		{"B", "B"},
		{"", "C"},
		{"?", "C"},
		{"Unknown", "C"},
		{"unknown", "C"},
		{"AB", "C"},
		{"not-applicable", "C"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeScore(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, []string{"A", "B", "C", "D", "E"}, got)
		})
	}
}

func TestNormalizeField(t *testing.T) {
	assert.Equal(t, "Barilla", NormalizeField("  Barilla ", "Estimated"))
	assert.Equal(t, "Estimated", NormalizeField("", "Estimated"))
	assert.Equal(t, "Estimated", NormalizeField("   ", "Estimated"))
	assert.Equal(t, "Estimated", NormalizeField("UNKNOWN", "Estimated"))
	assert.Equal(t, "", NormalizeField("unknown", ""))
}

func TestIsUnknownScore(t *testing.T) {
	for _, v := range []string{"", " ", "?", "unknown", "Unknown", "UNKNOWN"} {
		assert.True(t, IsUnknownScore(v), "%q", v)
	}
	for _, v := range []string{"A", "e", "F"} {
		assert.False(t, IsUnknownScore(v), "%q", v)
	}
}

func TestIsValidImageURL(t *testing.T) {
	assert.True(t, IsValidImageURL("https://images.openfoodfacts.org/x.jpg"))
	assert.True(t, IsValidImageURL("http://example.com/x.png"))
	assert.True(t, IsValidImageURL("data:image/png;base64,AAAA"))
	assert.False(t, IsValidImageURL(""))
	assert.False(t, IsValidImageURL("ftp://example.com/x.png"))
	assert.False(t, IsValidImageURL("//example.com/x.png"))
	assert.False(t, IsValidImageURL("data:text/plain,hi"))
}

func TestNormalizersAreIdempotent(t *testing.T) {
	tags := domain.SomeList("en:plastic-bottle", "fr:carton", "")
	once := FormatTags(tags, domain.Unknown)
	assert.Equal(t, once, FormatTags(domain.SomeList(once), domain.Unknown))

	for _, in := range []string{"a", "?", "Unknown", " d "} {
		once := NormalizeScore(in)
		assert.Equal(t, once, NormalizeScore(once))
	}

	for _, in := range []string{" x ", "unknown", ""} {
		once := NormalizeField(in, "Estimated")
		assert.Equal(t, once, NormalizeField(once, "Estimated"))
	}
}

func TestGoodChoiceMessage(t *testing.T) {
	analysis, title := GoodChoiceMessage("A", "D")
	assert.Equal(t, "your product is already a good choice!", analysis)
	assert.Equal(t, "Some other choices...", title)

	analysis, _ = GoodChoiceMessage("C", "a")
	assert.Equal(t, "your product is already a good choice!", analysis)

	analysis, title = GoodChoiceMessage("B", "B")
	assert.Equal(t, "Yum, but you have better options ;)", analysis)
	assert.Equal(t, "You may want to consider...", title)
}
