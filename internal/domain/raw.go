package domain

// OptString is a string field decoded from a loosely typed upstream record.
// Present is false when the field was missing or not a JSON string.
type OptString struct {
	Value   string
	Present bool
}

// Some returns a present OptString
func Some(v string) OptString {
	return OptString{Value: v, Present: true}
}

// Or returns the value when present and non-empty, otherwise fallback
func (o OptString) Or(fallback string) string {
	if o.Present && o.Value != "" {
		return o.Value
	}
	return fallback
}

// OptStrings is a tag list decoded from a loosely typed upstream record.
// Present is false when the field was missing or not a JSON array.
type OptStrings struct {
	Values  []string
	Present bool
}

// SomeList returns a present OptStrings
func SomeList(v ...string) OptStrings {
	return OptStrings{Values: v, Present: true}
}

// Last returns the final tag, which Open Food Facts orders as the most specific
func (o OptStrings) Last() (string, bool) {
	if !o.Present || len(o.Values) == 0 {
		return "", false
	}
	return o.Values[len(o.Values)-1], true
}

// RawProduct is one record of an Open Food Facts search response
type RawProduct struct {
	ProductName     OptString
	Brands          OptString
	EcoscoreGrade   OptString
	NutriscoreGrade OptString
	CategoriesTags  OptStrings
	PackagingTags   OptStrings
	LabelsTags      OptStrings
	IngredientsText OptString
	ImageURL        OptString
	ImageFrontURL   OptString
}

// Image returns the front image when present, else the generic image, else ""
func (p RawProduct) Image() string {
	if p.ImageFrontURL.Present && p.ImageFrontURL.Value != "" {
		return p.ImageFrontURL.Value
	}
	if p.ImageURL.Present && p.ImageURL.Value != "" {
		return p.ImageURL.Value
	}
	return ""
}

// HasImageField reports whether either image field is a string, even an empty one
func (p RawProduct) HasImageField() bool {
	return p.ImageFrontURL.Present || p.ImageURL.Present
}
