package usecase

import (
	"fmt"
	"strings"

	"github.com/greenscanner/backend/internal/domain"
)

// Narrative texts for the terminal states that do not list a product
const (
	noProductDetectedText = "No product name detected from the image. Showing estimated details."
	noAlternativesText    = "No similar alternatives found. Showing the best available match from Open Food Facts."
)

func databaseUnreachableText(status string) string {
	return fmt.Sprintf("Error: Could not reach Open Food Facts (%s). Using estimated data.", status)
}

func noExactMatchText(query string) string {
	return fmt.Sprintf("No exact match found for \"%s\". Showing the best available similar products and estimated details.", query)
}

// RenderNarrative formats the scanned product and its alternatives as the
// multi-line markdown report returned to the user. Diagnostics describing the
// image lookup are appended when includeDiagnostics is set and alternatives exist.
func RenderNarrative(product domain.ProductDetails, alternatives []domain.ProductDetails, trace domain.Trace, includeDiagnostics bool) string {
	analysis, title := GoodChoiceMessage(product.Ecoscore, product.Nutriscore)

	var b strings.Builder
	b.WriteString(productHeader(product))
	b.WriteString("\n\n")
	b.WriteString(analysis)

	if len(alternatives) == 0 {
		b.WriteString("\n\n")
		b.WriteString(noAlternativesText)
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(title)
	for i, alt := range alternatives {
		fmt.Fprintf(&b, "\n%d. %s %s (Score: %s)\n", i+1, alt.Brand, alt.Name, alt.Ecoscore)
		b.WriteString(detailLines(alt, "   "))
	}

	if includeDiagnostics {
		b.WriteString("\n\n")
		b.WriteString(renderDiagnostics(trace))
	}
	return b.String()
}

// RenderAlternativesFailure is the report when the alternatives search failed
func RenderAlternativesFailure(product domain.ProductDetails, status string) string {
	return fmt.Sprintf("%s\n\nCould not load alternatives right now (Open Food Facts error %s).",
		productHeader(product), status)
}

// productHeader renders the scanned line followed by the details block
func productHeader(p domain.ProductDetails) string {
	return fmt.Sprintf("🔍 Scanned: %s (Eco-Score: %s)\n**Details**\n%s", p.Name, p.Ecoscore, detailLines(p, ""))
}

func detailLines(p domain.ProductDetails, indent string) string {
	lines := []string{
		"- Brand: " + p.Brand,
		"- Categories: " + p.Categories,
		"- Packaging: " + p.Packaging,
		"- Labels: " + p.Labels,
		"- Ingredients: " + p.Ingredients,
		"- Nutri-Score: **" + p.Nutriscore + "**",
	}
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

func renderDiagnostics(t domain.Trace) string {
	return fmt.Sprintf("OFF query debug: %s\nOFF top image debug: %s\nOFF match image debug: %s",
		t.ImageQuery, orNone(t.TopImage), orNone(t.MatchedImage))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
