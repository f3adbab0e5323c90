package reports

import (
	"time"

	"resume-analyzer/internal/llm"
)

// Report is a persisted analysis owned by a single user.
type Report struct {
	ID                     string                   `json:"id"`
	UserID                 string                   `json:"userId"`
	JobTitle               string                   `json:"jobTitle"`
	CompanyName            string                   `json:"companyName"`
	MatchScore             int                      `json:"matchScore"`
	KeywordAnalysis        llm.KeywordAnalysis      `json:"keywordAnalysis"`
	LanguageAnalysis       *llm.LanguageAnalysis    `json:"languageAnalysis,omitempty"`
	ResumeSuggestions      []llm.SectionSuggestions `json:"resumeSuggestions"`
	GeneratedCoverLetter   string                   `json:"generatedCoverLetter"`
	CoverLetterTone        llm.Tone                 `json:"coverLetterTone"`
	OriginalResume         string                   `json:"originalResume"`
	OriginalJobDescription string                   `json:"originalJobDescription"`
	Provider               string                   `json:"provider,omitempty"`
	Model                  string                   `json:"model,omitempty"`
	CreatedAt              time.Time                `json:"createdAt"`
	UpdatedAt              time.Time                `json:"updatedAt"`
}

// Summary is the list view of a report.
type Summary struct {
	ID          string    `json:"id"`
	JobTitle    string    `json:"jobTitle"`
	CompanyName string    `json:"companyName"`
	MatchScore  int       `json:"matchScore"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r Report) Summary() Summary {
	return Summary{
		ID:          r.ID,
		JobTitle:    r.JobTitle,
		CompanyName: r.CompanyName,
		MatchScore:  r.MatchScore,
		CreatedAt:   r.CreatedAt,
	}
}

// AnalysisRequest is the input to Service.Analyze.
type AnalysisRequest struct {
	UserID         string
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// AnalysisResponse is the stored report plus every tone variant of the cover letter.
// Only the default tone is persisted.
type AnalysisResponse struct {
	Report
	ReportID     string           `json:"reportId"`
	CoverLetters llm.CoverLetters `json:"coverLetters"`
}

// CoverLetterResult is returned by a tone regeneration.
type CoverLetterResult struct {
	ReportID    string   `json:"reportId"`
	CoverLetter string   `json:"coverLetter"`
	Tone        llm.Tone `json:"tone"`
}
