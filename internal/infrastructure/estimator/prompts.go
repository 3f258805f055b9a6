package estimator

import (
	"fmt"
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

const estimateSystemPrompt = `You are a product sustainability assistant. Estimate missing product fields and Eco/Nutri scores (A-E).
Never return "Unknown". If uncertain, provide a best-guess string and set ecoscore/nutriscore to "C".
Return JSON ONLY with keys: name, brand, categories, packaging, labels, ingredients, ecoscore, nutriscore, imageUrl.`

const identifySystemPrompt = "Identify the packaged grocery product in the image. Return JSON ONLY with keys: name, brand. " +
	"Use a specific product name (e.g., 'Lay's Classic Potato Chips'). If unsure, provide a best-guess and never return 'Unknown'."

const identifyUserPrompt = "Identify the product in this image."

var estimateSchema = Schema{
	Name: "product_estimate",
	Properties: []string{
		"name", "brand", "categories", "packaging", "labels",
		"ingredients", "ecoscore", "nutriscore", "imageUrl",
	},
}

var identificationSchema = Schema{
	Name:       "image_product_identification",
	Properties: []string{"name", "brand"},
}

// estimatePrompt renders the user turn for a field estimation
func estimatePrompt(name string, webResults []domain.WebResult) string {
	webText := "No web results available."
	if len(webResults) > 0 {
		parts := make([]string, len(webResults))
		for i, r := range webResults {
			parts[i] = fmt.Sprintf("Result %d: %s\n%s\n%s", i+1, r.Title, r.Snippet, r.URL)
		}
		webText = strings.Join(parts, "\n\n")
	}
	return fmt.Sprintf("Product query: %s\n\nWeb results:\n%s", name, webText)
}
