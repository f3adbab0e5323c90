package llm

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCompanyName is used when the job description does not name the employer.
const DefaultCompanyName = "Not Specified"

// Tone is a cover-letter style preset.
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneEnthusiastic Tone = "Enthusiastic"
	ToneConcise      Tone = "Concise"

	DefaultTone = ToneProfessional
)

var ErrUnsupportedTone = errors.New("unsupported tone")

// Tones returns the recognized tones in display order.
func Tones() []Tone {
	return []Tone{ToneProfessional, ToneEnthusiastic, ToneConcise}
}

// ParseTone matches raw case-insensitively against the recognized tones.
func ParseTone(raw string) (Tone, error) {
	clean := strings.TrimSpace(raw)
	for _, t := range Tones() {
		if strings.EqualFold(clean, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of Professional, Enthusiastic, Concise)", ErrUnsupportedTone, clean)
}

// Style is the instruction fragment describing the tone to the model.
func (t Tone) Style() string {
	switch t {
	case ToneEnthusiastic:
		return "energetic and enthusiastic, showing genuine excitement for the role"
	case ToneConcise:
		return "brief and to the point, no more than three short paragraphs"
	default:
		return "professional and formal"
	}
}

// CoverLetters holds one letter per tone.
type CoverLetters struct {
	Professional string `json:"Professional"`
	Enthusiastic string `json:"Enthusiastic"`
	Concise      string `json:"Concise"`
}

func (c CoverLetters) Get(t Tone) string {
	switch t {
	case ToneProfessional:
		return c.Professional
	case ToneEnthusiastic:
		return c.Enthusiastic
	case ToneConcise:
		return c.Concise
	default:
		return ""
	}
}

type KeywordAnalysis struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

type LanguageAnalysis struct {
	Score           int      `json:"score"`
	OverallFeedback string   `json:"overallFeedback"`
	Improvements    []string `json:"improvements"`
}

type Suggestion struct {
	Insight    string `json:"insight"`
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
}

type SectionSuggestions struct {
	Section     string       `json:"section"`
	Suggestions []Suggestion `json:"suggestions"`
}

// AnalysisResult is the structured payload produced by an analysis prompt.
type AnalysisResult struct {
	JobTitle             string               `json:"jobTitle"`
	CompanyName          string               `json:"companyName"`
	MatchScore           int                  `json:"matchScore"`
	KeywordAnalysis      KeywordAnalysis      `json:"keywordAnalysis"`
	LanguageAnalysis     *LanguageAnalysis    `json:"languageAnalysis,omitempty"`
	ResumeSuggestions    []SectionSuggestions `json:"resumeSuggestions"`
	GeneratedCoverLetter CoverLetters         `json:"generatedCoverLetter"`
}

// Validate checks the invariants the schema cannot express on its own.
func (r AnalysisResult) Validate() error {
	var issues []string
	if !inScoreRange(r.MatchScore) {
		issues = append(issues, fmt.Sprintf("matchScore %d out of range [0,100]", r.MatchScore))
	}
	if r.LanguageAnalysis != nil && !inScoreRange(r.LanguageAnalysis.Score) {
		issues = append(issues, fmt.Sprintf("languageAnalysis.score %d out of range [0,100]", r.LanguageAnalysis.Score))
	}
	for _, t := range Tones() {
		if strings.TrimSpace(r.GeneratedCoverLetter.Get(t)) == "" {
			issues = append(issues, fmt.Sprintf("generatedCoverLetter.%s is empty", t))
		}
	}
	for i, section := range r.ResumeSuggestions {
		if strings.TrimSpace(section.Section) == "" {
			issues = append(issues, fmt.Sprintf("resumeSuggestions[%d].section is empty", i))
		}
	}
	if len(issues) > 0 {
		return &SchemaValidationError{Issues: issues}
	}
	return nil
}

func (r *AnalysisResult) normalize() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	if r.CompanyName == "" {
		r.CompanyName = DefaultCompanyName
	}
	if r.KeywordAnalysis.Found == nil {
		r.KeywordAnalysis.Found = []string{}
	}
	if r.KeywordAnalysis.Missing == nil {
		r.KeywordAnalysis.Missing = []string{}
	}
	if r.ResumeSuggestions == nil {
		r.ResumeSuggestions = []SectionSuggestions{}
	}
}

func inScoreRange(v int) bool {
	return v >= 0 && v <= 100
}

// ErrSchemaValidation matches any *SchemaValidationError.
var ErrSchemaValidation = errors.New("schema validation failed")

// SchemaValidationError lists why a model response did not satisfy the contract.
type SchemaValidationError struct {
	Issues []string
}

func (e *SchemaValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	return ErrSchemaValidation.Error() + ": " + strings.Join(e.Issues, "; ")
}

func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}
