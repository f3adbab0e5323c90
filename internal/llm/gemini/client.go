package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"resume-analyzer/internal/llm"
)

const providerName = "gemini"

// Config configures the Gemini completer.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
}

// Client implements llm.Completer on top of the Gemini API.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewClient creates a Gemini-backed completer.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model, temperature: cfg.Temperature, timeout: timeout}, nil
}

// Complete issues a single GenerateContent call. Structured shapes are
// constrained with a response schema derived from the llm contract.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{}
	if c.temperature > 0 {
		gc.Temperature = genai.Ptr(c.temperature)
	}
	if strings.TrimSpace(req.System) != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if schema := ResponseSchema(req.Shape); schema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = schema
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gc)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return llm.Completion{}, fmt.Errorf("gemini request timeout: %w", context.DeadlineExceeded)
		}
		return llm.Completion{}, err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return llm.Completion{}, fmt.Errorf("gemini response empty content")
	}

	out := llm.Completion{Text: text, Provider: providerName, Model: c.model}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// ResponseSchema maps a request shape to a Gemini response schema.
// Plain text requests return nil.
func ResponseSchema(shape llm.Shape) *genai.Schema {
	switch shape {
	case llm.ShapeAnalysis:
		return convert(llm.AnalysisSchema())
	case llm.ShapeCoverLetter:
		return convert(llm.CoverLetterSchema())
	default:
		return nil
	}
}

// convert translates the subset of JSON Schema used by the contract into
// the OpenAPI-style schema Gemini accepts.
func convert(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Required:    s.Required,
	}

	typ := s.Type
	for _, t := range s.Types {
		if t == "null" {
			out.Nullable = genai.Ptr(true)
			continue
		}
		typ = t
	}
	out.Type = schemaType(typ)

	if s.MinLength != nil {
		out.MinLength = genai.Ptr(int64(*s.MinLength))
	}
	if s.Items != nil {
		out.Items = convert(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = convert(prop)
		}
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

var _ llm.Completer = (*Client)(nil)
