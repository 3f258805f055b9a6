package domain

// Unknown marks a product field that has not been established by any source.
const Unknown = "Unknown"

// ProductDetails is the canonical description of one product
type ProductDetails struct {
	Name             string `json:"name"`
	Brand            string `json:"brand"`
	Categories       string `json:"categories"`
	Packaging        string `json:"packaging"`
	Labels           string `json:"labels"`
	Ingredients      string `json:"ingredients"`
	Ecoscore         string `json:"ecoscore"`
	Nutriscore       string `json:"nutriscore"`
	ImageURL         string `json:"imageUrl"`
	EcoEstimated     bool   `json:"ecoEstimated"`
	NutriEstimated   bool   `json:"nutriEstimated"`
	DetailsEstimated bool   `json:"detailsEstimated"`
}

// SustainableResult is the outcome of resolving one product query
type SustainableResult struct {
	Text         string           `json:"text"`
	Product      ProductDetails   `json:"product"`
	Alternatives []ProductDetails `json:"alternatives"`
	Trace        Trace            `json:"trace"`
}

// EstimationResult holds the fields a generative estimator filled in.
// Every field is optional; an empty string means the estimator offered nothing.
type EstimationResult struct {
	Name        string `json:"name,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Categories  string `json:"categories,omitempty"`
	Packaging   string `json:"packaging,omitempty"`
	Labels      string `json:"labels,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
	Ecoscore    string `json:"ecoscore,omitempty"`
	Nutriscore  string `json:"nutriscore,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// IsEmpty reports whether the estimate carries no usable value at all.
// A field set to "Unknown" counts as empty.
func (e *EstimationResult) IsEmpty() bool {
	if e == nil {
		return true
	}
	for _, v := range []string{
		e.Name, e.Brand, e.Categories, e.Packaging, e.Labels,
		e.Ingredients, e.Ecoscore, e.Nutriscore, e.ImageURL,
	} {
		if v != "" && v != Unknown {
			return false
		}
	}
	return true
}

// HasDetails reports whether any descriptive (non-score, non-name) field was supplied
func (e *EstimationResult) HasDetails() bool {
	if e == nil {
		return false
	}
	for _, v := range []string{e.Brand, e.Categories, e.Packaging, e.Labels, e.Ingredients} {
		if v != "" && v != Unknown {
			return true
		}
	}
	return false
}

// ImageIdentification is the product a multimodal model recognised in a photo
type ImageIdentification struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// WebResult is one organic web search hit
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// LookupRequest is the input accepted at the tool and widget boundary
type LookupRequest struct {
	ProductQuery string `json:"product_query"`
	ImageBase64  string `json:"image_base64,omitempty"`
}
