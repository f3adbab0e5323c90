package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/cover_letter.txt
	coverLetterTemplate string
)

const (
	AnalysisSystemPrompt    = "You are an ATS optimization expert. Reply with one JSON object and nothing else."
	CoverLetterSystemPrompt = "You are a careful cover letter writer. Reply with one JSON object and nothing else."
)

// BuildAnalysisPrompt embeds the inputs verbatim into the analysis template.
// Placeholders inside the inputs are not expanded.
func BuildAnalysisPrompt(resumeText, jobDescription, formatInstructions string) string {
	replacer := strings.NewReplacer(
		"{{RESUME_TEXT}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{FORMAT_INSTRUCTIONS}}", formatInstructions,
	)
	return replacer.Replace(analysisTemplate)
}

// CoverLetterInput is the context used to regenerate a single letter.
type CoverLetterInput struct {
	ResumeText     string
	JobDescription string
	JobTitle       string
	CompanyName    string
	Tone           Tone
}

func BuildCoverLetterPrompt(in CoverLetterInput, formatInstructions string) string {
	company := strings.TrimSpace(in.CompanyName)
	if company == "" || company == DefaultCompanyName {
		company = "the hiring company"
	}
	title := strings.TrimSpace(in.JobTitle)
	if title == "" {
		title = "the advertised role"
	}
	replacer := strings.NewReplacer(
		"{{TONE}}", string(in.Tone),
		"{{TONE_STYLE}}", in.Tone.Style(),
		"{{JOB_TITLE}}", title,
		"{{COMPANY_NAME}}", company,
		"{{RESUME_TEXT}}", in.ResumeText,
		"{{JOB_DESCRIPTION}}", in.JobDescription,
		"{{FORMAT_INSTRUCTIONS}}", formatInstructions,
	)
	return replacer.Replace(coverLetterTemplate)
}
