package domain

// Query sources
const (
	QuerySourceText  = "text"
	QuerySourceImage = "image"
	QuerySourceNone  = "none"
)

// Primary lookup outcomes
const (
	PrimaryMatch  = "match"
	PrimaryEmpty  = "empty"
	PrimaryFailed = "failed"
)

// Image selection paths
const (
	ImagePathUserImage = "user-image"
	ImagePathDatabase  = "database"
	ImagePathTopHit    = "top-hit"
	ImagePathMatched   = "matched"
	ImagePathNone      = "none"
)

// Alternatives sources
const (
	AltSourceCategory = "category"
	AltSourceText     = "text"
	AltSourceRelaxed  = "relaxed"
)

// Trace records how a result was assembled. It is a value type: every
// With method returns a modified copy and leaves the receiver untouched.
type Trace struct {
	EffectiveQuery     string `json:"effectiveQuery"`
	QuerySource        string `json:"querySource"`
	IdentifiedName     string `json:"identifiedName,omitempty"`
	IdentifiedBrand    string `json:"identifiedBrand,omitempty"`
	PrimaryOutcome     string `json:"primaryOutcome,omitempty"`
	PrimaryStatus      string `json:"primaryStatus,omitempty"`
	Estimated          bool   `json:"estimated"`
	WebSearchUsed      bool   `json:"webSearchUsed"`
	ScoresDefaulted    bool   `json:"scoresDefaulted"`
	ImagePath          string `json:"imagePath,omitempty"`
	ImageQuery         string `json:"imageQuery,omitempty"`
	TopImage           string `json:"topImage,omitempty"`
	MatchedImage       string `json:"matchedImage,omitempty"`
	AltSource          string `json:"altSource,omitempty"`
	AltCategory        string `json:"altCategory,omitempty"`
	SupplementaryUsed  bool   `json:"supplementaryUsed"`
	AlternativesStatus string `json:"alternativesStatus,omitempty"`
}

// WithQuery records the effective query and where it came from
func (t Trace) WithQuery(query, source string) Trace {
	t.EffectiveQuery = query
	t.QuerySource = source
	return t
}

// WithIdentification records the product read from the user's image
func (t Trace) WithIdentification(name, brand string) Trace {
	t.IdentifiedName = name
	t.IdentifiedBrand = brand
	return t
}

// WithPrimary records the primary search outcome and its failure status, if any
func (t Trace) WithPrimary(outcome, status string) Trace {
	t.PrimaryOutcome = outcome
	t.PrimaryStatus = status
	return t
}

// WithEstimation marks the estimator as used; web search use is sticky
func (t Trace) WithEstimation(webSearchUsed bool) Trace {
	t.Estimated = true
	t.WebSearchUsed = t.WebSearchUsed || webSearchUsed
	return t
}

// WithScoresDefaulted marks that a grade fell back to "C"
func (t Trace) WithScoresDefaulted() Trace {
	t.ScoresDefaulted = true
	return t
}

// WithImage records the image selection path. Empty image strings are kept
// as-is; the narrative renders them as "(none)".
func (t Trace) WithImage(path, query, topImage, matchedImage string) Trace {
	t.ImagePath = path
	t.ImageQuery = query
	t.TopImage = topImage
	t.MatchedImage = matchedImage
	return t
}

// WithAlternatives records where the alternatives were searched
func (t Trace) WithAlternatives(source, category string, supplementary bool) Trace {
	t.AltSource = source
	t.AltCategory = category
	t.SupplementaryUsed = supplementary
	return t
}

// WithAlternativesFailure records the status of a failed alternatives search
func (t Trace) WithAlternativesFailure(status string) Trace {
	t.AlternativesStatus = status
	return t
}
