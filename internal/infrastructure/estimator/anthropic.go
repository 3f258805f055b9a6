package estimator

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicMessager is the slice of the Messages API the generator needs
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicGenerator runs JSON generations with Claude. The Messages API has
// no response schema, so the schema is spelled out in the system prompt and
// the answer goes through the tolerant parser.
type AnthropicGenerator struct {
	messages AnthropicMessager
	model    string
}

var newAnthropicClient = func(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

// NewAnthropicGenerator creates an Anthropic generator
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	return newAnthropicGenerator(newAnthropicClient(apiKey), model)
}

func newAnthropicGenerator(messages AnthropicMessager, model string) *AnthropicGenerator {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicGenerator{messages: messages, model: model}
}

func (a *AnthropicGenerator) ModelName() string { return a.model }

func (a *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Output, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.Prompt)}
	if req.Image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(req.Image.MIMEType, req.Image.Base64))
	}

	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: anthropicSystemPrompt(req)}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, err
	}

	out := &Output{}
	for _, b := range resp.Content {
		if b.Type == "text" && b.Text != "" {
			out.Texts = append(out.Texts, b.Text)
		}
	}
	return out, nil
}

func anthropicSystemPrompt(req Request) string {
	return fmt.Sprintf("%s\nRespond with a single JSON object named %s whose string properties are exactly: %s. No prose, no markdown.",
		req.System, req.Schema.Name, strings.Join(req.Schema.Properties, ", "))
}
