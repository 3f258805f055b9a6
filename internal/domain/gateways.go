package domain

import "context"

// SearchMode selects which Open Food Facts search endpoint serves a query
type SearchMode int

const (
	// ModeSimple is the legacy full-text search (cgi/search.pl)
	ModeSimple SearchMode = iota
	// ModeV2 is the field-projected search API (api/v2/search)
	ModeV2
)

// ProductQuery describes one product database search.
// When CategoryTag is set it replaces Terms.
type ProductQuery struct {
	Terms       string
	CategoryTag string
	Mode        SearchMode
	PageSize    int
	SortBy      string
	Fields      []string
}

// ProductDatabase searches the public product database.
// A nil error with zero products means the search ran and matched nothing.
type ProductDatabase interface {
	Search(ctx context.Context, query ProductQuery) ([]RawProduct, error)
}

// WebSearcher returns a few organic web results. It never fails: any problem
// yields an empty slice.
type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) []WebResult
}

// Estimator fills product data from a generative model. Both operations
// return nil when the model is unavailable or answers badly.
type Estimator interface {
	IdentifyFromImage(ctx context.Context, imageData string) *ImageIdentification
	Estimate(ctx context.Context, name string, webResults []WebResult, imageData string) *EstimationResult
}
