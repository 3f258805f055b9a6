package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenscanner/backend/internal/domain"
)

// ToolName is the name the lookup is published under to chat hosts
const ToolName = "find_sustainable_alternative"

// ProductResolver resolves a lookup request into a sustainable result
type ProductResolver interface {
	Lookup(ctx context.Context, request *domain.LookupRequest) (*domain.SustainableResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver ProductResolver
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil resolver makes the lookup
// endpoints answer 501.
func NewHandler(resolver ProductResolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{resolver: resolver, logger: logger.Named("http")}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "greenscanner-backend",
		"version": "1.0.0",
	})
}

type toolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type toolInputSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]toolProperty `json:"properties"`
	Required   []string                `json:"required"`
}

type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema toolInputSchema `json:"inputSchema"`
}

var lookupTool = toolDescriptor{
	Name:        ToolName,
	Description: "Identifies a product from a search query and finds more sustainable alternatives.",
	InputSchema: toolInputSchema{
		Type: "object",
		Properties: map[string]toolProperty{
			"product_query": {
				Type:        "string",
				Description: "The text identified from the user's photo (e.g., 'Barilla Spaghetti').",
			},
			"image_base64": {
				Type:        "string",
				Description: "Optional product image as a data URL for image-based estimation.",
			},
		},
		Required: []string{"product_query"},
	},
}

// ListTools describes the tools this server exposes
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": []toolDescriptor{lookupTool}})
}

type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the envelope chat hosts expect from a tool call
type toolResult struct {
	Content           []toolContent             `json:"content"`
	StructuredContent *domain.SustainableResult `json:"structuredContent,omitempty"`
	IsError           bool                      `json:"isError,omitempty"`
}

// FindSustainableAlternative handles tool calls from a chat host
func (h *Handler) FindSustainableAlternative(c *gin.Context) {
	req, ok := h.bindLookup(c)
	if !ok {
		return
	}

	result, err := h.resolver.Lookup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_query or image_base64 is required"})
			return
		}
		h.logger.Error("tool call failed", zap.String("query", req.ProductQuery), zap.Error(err))
		c.JSON(http.StatusOK, toolResult{
			Content: []toolContent{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		})
		return
	}

	c.JSON(http.StatusOK, toolResult{
		Content:           []toolContent{{Type: "text", Text: result.Text}},
		StructuredContent: result,
	})
}

// LookupProduct handles lookups from the widget form
func (h *Handler) LookupProduct(c *gin.Context) {
	req, ok := h.bindLookup(c)
	if !ok {
		return
	}

	result, err := h.resolver.Lookup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_query or image_base64 is required"})
			return
		}
		h.logger.Error("lookup failed", zap.String("query", req.ProductQuery), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindLookup decodes the request body, writing the error response itself
// when it returns false
func (h *Handler) bindLookup(c *gin.Context) (*domain.LookupRequest, bool) {
	if h.resolver == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "product lookup not configured"})
		return nil, false
	}

	var req domain.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return &req, true
}
