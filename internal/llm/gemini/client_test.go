package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-analyzer/internal/llm"
)

func TestResponseSchemaAnalysis(t *testing.T) {
	s := ResponseSchema(llm.ShapeAnalysis)
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"jobTitle", "matchScore", "keywordAnalysis", "resumeSuggestions", "generatedCoverLetter"}, s.Required)

	score := s.Properties["matchScore"]
	require.NotNil(t, score)
	assert.Equal(t, genai.TypeInteger, score.Type)
	require.NotNil(t, score.Maximum)
	assert.Equal(t, 100.0, *score.Maximum)

	lang := s.Properties["languageAnalysis"]
	require.NotNil(t, lang)
	assert.Equal(t, genai.TypeObject, lang.Type)
	require.NotNil(t, lang.Nullable)
	assert.True(t, *lang.Nullable)

	sections := s.Properties["resumeSuggestions"]
	require.NotNil(t, sections)
	assert.Equal(t, genai.TypeArray, sections.Type)
	require.NotNil(t, sections.Items)
	assert.Equal(t, genai.TypeArray, sections.Items.Properties["suggestions"].Type)

	letters := s.Properties["generatedCoverLetter"]
	require.NotNil(t, letters.Properties["Concise"].MinLength)
}

func TestResponseSchemaText(t *testing.T) {
	assert.Nil(t, ResponseSchema(llm.ShapeText))
	assert.Equal(t, genai.TypeString, ResponseSchema(llm.ShapeCoverLetter).Properties["coverLetter"].Type)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Model: "gemini-2.5-flash"})
	assert.Error(t, err)
	_, err = NewClient(context.Background(), Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestCompleteAgainstFakeServer(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"coverLetter\":\"Dear team\"}"}]}}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", Model: "gemini-2.5-flash", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), llm.CompletionRequest{System: "sys", Prompt: "write", Shape: llm.ShapeCoverLetter})
	require.NoError(t, err)
	assert.Equal(t, `{"coverLetter":"Dear team"}`, out.Text)
	assert.Equal(t, "gemini", out.Provider)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 15, out.Usage.TotalTokens)

	cfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing from request")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
}
