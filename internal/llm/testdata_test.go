package llm

import (
	"context"
	"sync"
)

const validAnalysisJSON = `{
  "jobTitle": "Backend Engineer",
  "companyName": "Acme",
  "matchScore": 72,
  "keywordAnalysis": {"found": ["Node.js", "SQL"], "missing": ["Docker"]},
  "languageAnalysis": {"score": 81, "overallFeedback": "Clear and direct.", "improvements": ["Use active voice", "Quantify outcomes"]},
  "resumeSuggestions": [
    {"section": "Experience", "suggestions": [
      {"insight": "Quantify impact", "original": "- Built APIs", "suggestion": "- Built 12 Node.js APIs serving 2M requests/day\n- Cut SQL query latency by 40%"}
    ]}
  ],
  "generatedCoverLetter": {"Professional": "Dear team,", "Enthusiastic": "Hi team!", "Concise": "Hello."}
}`

// fakeCompleter returns canned responses and counts calls.
type fakeCompleter struct {
	mu       sync.Mutex
	calls    int
	requests []CompletionRequest
	text     string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return Completion{}, f.err
	}
	return Completion{Text: f.text, Provider: "fake", Model: "fake-1", Usage: &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil
}
