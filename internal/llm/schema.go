package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	contractOnce sync.Once
	contract     struct {
		analysis            *jsonschema.Schema
		analysisResolved    *jsonschema.Resolved
		coverLetter         *jsonschema.Schema
		coverLetterResolved *jsonschema.Resolved
		instructions        string
		coverInstructions   string
		err                 error
	}
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func nonEmptyStr(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc, MinLength: intPtr(1)}
}

func strList(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: desc, Items: &jsonschema.Schema{Type: "string"}}
}

func score(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc, Minimum: floatPtr(0), Maximum: floatPtr(100)}
}

// AnalysisSchema describes AnalysisResult as JSON Schema.
func AnalysisSchema() *jsonschema.Schema {
	suggestion := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"insight":    str("Why this change matters, e.g. 'Quantify impact with metrics'."),
			"original":   str("The exact text from the resume being improved."),
			"suggestion": str("Drop-in rewrite of the original. Keep bullets as bullets and paragraphs as paragraphs; use \\n for line breaks."),
		},
		Required: []string{"insight", "original", "suggestion"},
	}
	section := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"section":     nonEmptyStr("Resume section name, e.g. 'Work Experience' or 'Projects'."),
			"suggestions": {Type: "array", Description: "Suggestions for this section.", Items: suggestion},
		},
		Required: []string{"section", "suggestions"},
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"jobTitle":    str("Job title taken from the job description."),
			"companyName": str("Company name from the job description, or 'Not Specified' when absent."),
			"matchScore":  score("Estimated ATS match score from 0 to 100."),
			"keywordAnalysis": {
				Type:        "object",
				Description: "Keyword alignment between resume and job description.",
				Properties: map[string]*jsonschema.Schema{
					"found":   strList("Critical job-description keywords present in the resume."),
					"missing": strList("Critical job-description keywords absent from the resume."),
				},
				Required: []string{"found", "missing"},
			},
			"languageAnalysis": {
				Types:       []string{"null", "object"},
				Description: "Grammar, tone and clarity review of the resume.",
				Properties: map[string]*jsonschema.Schema{
					"score":           score("Language quality score from 0 to 100."),
					"overallFeedback": str("One-sentence summary of the language review."),
					"improvements":    strList("Two or three specific, actionable improvements."),
				},
				Required: []string{"score", "overallFeedback", "improvements"},
			},
			"resumeSuggestions": {
				Type:        "array",
				Description: "Suggestions grouped by resume section. Omit sections that need no changes.",
				Items:       section,
			},
			"generatedCoverLetter": {
				Type:        "object",
				Description: "Three versions of a cover letter tailored to the job.",
				Properties: map[string]*jsonschema.Schema{
					string(ToneProfessional): nonEmptyStr("Cover letter in a " + ToneProfessional.Style() + " tone."),
					string(ToneEnthusiastic): nonEmptyStr("Cover letter in an " + ToneEnthusiastic.Style() + " tone."),
					string(ToneConcise):      nonEmptyStr("Cover letter that is " + ToneConcise.Style() + "."),
				},
				Required: []string{string(ToneProfessional), string(ToneEnthusiastic), string(ToneConcise)},
			},
		},
		Required: []string{"jobTitle", "matchScore", "keywordAnalysis", "resumeSuggestions", "generatedCoverLetter"},
	}
}

// CoverLetterSchema describes the single-letter regeneration response.
func CoverLetterSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"coverLetter": nonEmptyStr("The complete cover letter text. Use \\n between paragraphs."),
		},
		Required: []string{"coverLetter"},
	}
}

const instructionsHeader = `Respond with a single JSON object that conforms to the JSON Schema below.
Every property listed under "required" must be present. Integers must be whole numbers within the stated minimum and maximum.
Do not wrap the object in markdown fences and do not add commentary before or after it.

JSON Schema:
`

func loadContract() error {
	contractOnce.Do(func() {
		contract.analysis = AnalysisSchema()
		contract.coverLetter = CoverLetterSchema()

		contract.analysisResolved, contract.err = contract.analysis.Resolve(nil)
		if contract.err != nil {
			contract.err = fmt.Errorf("resolve analysis schema: %w", contract.err)
			return
		}
		contract.coverLetterResolved, contract.err = contract.coverLetter.Resolve(nil)
		if contract.err != nil {
			contract.err = fmt.Errorf("resolve cover letter schema: %w", contract.err)
			return
		}

		contract.instructions, contract.err = renderInstructions(contract.analysis)
		if contract.err != nil {
			return
		}
		contract.coverInstructions, contract.err = renderInstructions(contract.coverLetter)
	})
	return contract.err
}

func renderInstructions(s *jsonschema.Schema) (string, error) {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return instructionsHeader + string(raw), nil
}

// FormatInstructions is the analysis schema rendered for prompt injection.
// It is computed once per process.
func FormatInstructions() string {
	if err := loadContract(); err != nil {
		panic(err)
	}
	return contract.instructions
}

// CoverLetterFormatInstructions is the regeneration schema rendered for prompts.
func CoverLetterFormatInstructions() string {
	if err := loadContract(); err != nil {
		panic(err)
	}
	return contract.coverInstructions
}

// ParseAnalysis repairs, validates and decodes a raw model response.
func ParseAnalysis(raw string) (AnalysisResult, error) {
	if err := loadContract(); err != nil {
		return AnalysisResult{}, err
	}
	cleaned, payload, err := decodeLenient(raw)
	if err != nil {
		return AnalysisResult{}, err
	}
	if err := contract.analysisResolved.Validate(payload); err != nil {
		return AnalysisResult{}, &SchemaValidationError{Issues: []string{err.Error()}}
	}

	var out AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return AnalysisResult{}, &SchemaValidationError{Issues: []string{err.Error()}}
	}
	out.normalize()
	if err := out.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	return out, nil
}

// ParseCoverLetter extracts the letter from a regeneration response.
func ParseCoverLetter(raw string) (string, error) {
	if err := loadContract(); err != nil {
		return "", err
	}
	cleaned, payload, err := decodeLenient(raw)
	if err != nil {
		return "", err
	}
	if err := contract.coverLetterResolved.Validate(payload); err != nil {
		return "", &SchemaValidationError{Issues: []string{err.Error()}}
	}
	var out struct {
		CoverLetter string `json:"coverLetter"`
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return "", &SchemaValidationError{Issues: []string{err.Error()}}
	}
	letter := strings.TrimSpace(out.CoverLetter)
	if letter == "" {
		return "", &SchemaValidationError{Issues: []string{"coverLetter is empty"}}
	}
	return letter, nil
}

// decodeLenient decodes raw as JSON, applying repairJSON once when the
// response is not valid as-is.
func decodeLenient(raw string) (string, any, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", nil, &SchemaValidationError{Issues: []string{"empty response"}}
	}
	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		if _, ok := payload.(map[string]any); ok {
			return cleaned, payload, nil
		}
	}

	repaired := repairJSON(cleaned)
	payload = nil
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return "", nil, &SchemaValidationError{Issues: []string{"response is not valid JSON: " + err.Error()}}
	}
	if _, ok := payload.(map[string]any); !ok {
		return "", nil, &SchemaValidationError{Issues: []string{"response is not a JSON object"}}
	}
	return repaired, payload, nil
}
