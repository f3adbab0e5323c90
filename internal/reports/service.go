package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
)

var tracer = otel.Tracer("resume-analyzer/internal/reports")

// Generator is the subset of llm.Client the orchestrator needs.
type Generator interface {
	Analyze(ctx context.Context, prompt string) (llm.AnalysisResult, error)
	CoverLetter(ctx context.Context, prompt string) (string, error)
}

// Service orchestrates analysis, persistence and cover-letter regeneration.
type Service struct {
	Repo     Repo
	Gen      Generator
	Provider string
	Model    string

	now   func() time.Time
	newID func() string
}

func NewService(repo Repo, gen Generator, provider, model string) *Service {
	return &Service{
		Repo:     repo,
		Gen:      gen,
		Provider: provider,
		Model:    model,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Analyze runs one analysis and stores the result. Nothing is stored when
// validation or generation fails.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResponse, error) {
	if err := validateAnalysisRequest(req); err != nil {
		return AnalysisResponse{}, err
	}

	ctx, span := tracer.Start(ctx, "reports.analyze")
	defer span.End()

	start := s.clock()
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", map[string]any{
		"user_id":      req.UserID,
		"resume_chars": len(req.ResumeText),
		"jd_chars":     len(req.JobDescription),
		"provider":     s.Provider,
		"model":        s.Model,
	})

	prompt := llm.BuildAnalysisPrompt(req.ResumeText, req.JobDescription, llm.FormatInstructions())
	result, err := s.Gen.Analyze(ctx, prompt)
	if err != nil {
		s.fail(span, "generation", req.UserID, start, err)
		return AnalysisResponse{}, err
	}

	now := s.clock().UTC()
	report := Report{
		ID:                     s.id(),
		UserID:                 req.UserID,
		JobTitle:               result.JobTitle,
		CompanyName:            result.CompanyName,
		MatchScore:             result.MatchScore,
		KeywordAnalysis:        result.KeywordAnalysis,
		LanguageAnalysis:       result.LanguageAnalysis,
		ResumeSuggestions:      result.ResumeSuggestions,
		GeneratedCoverLetter:   result.GeneratedCoverLetter.Get(llm.DefaultTone),
		CoverLetterTone:        llm.DefaultTone,
		OriginalResume:         req.ResumeText,
		OriginalJobDescription: req.JobDescription,
		Provider:               s.Provider,
		Model:                  s.Model,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if report.CompanyName == "" {
		report.CompanyName = llm.DefaultCompanyName
	}

	if err := s.Repo.Create(ctx, report); err != nil {
		s.fail(span, "persistence", req.UserID, start, err)
		return AnalysisResponse{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	elapsed := s.clock().Sub(start)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDuration(elapsed)
	span.SetAttributes(
		attribute.String("report.id", report.ID),
		attribute.Int("report.match_score", report.MatchScore),
	)
	telemetry.Info("analysis.completed", map[string]any{
		"user_id":     req.UserID,
		"report_id":   report.ID,
		"match_score": report.MatchScore,
		"duration_ms": elapsed.Milliseconds(),
	})

	return AnalysisResponse{
		Report:       report,
		ReportID:     report.ID,
		CoverLetters: result.GeneratedCoverLetter,
	}, nil
}

// RegenerateCoverLetter produces a new letter in the requested tone from the
// report's original inputs and makes it the stored letter.
func (s *Service) RegenerateCoverLetter(ctx context.Context, reportID, rawTone, userID string) (CoverLetterResult, error) {
	tone, err := llm.ParseTone(rawTone)
	if err != nil {
		return CoverLetterResult{}, err
	}

	ctx, span := tracer.Start(ctx, "reports.regenerate_cover_letter")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", reportID), attribute.String("cover_letter.tone", string(tone)))

	report, err := s.GetReport(ctx, reportID, userID)
	if err != nil {
		return CoverLetterResult{}, err
	}

	prompt := llm.BuildCoverLetterPrompt(llm.CoverLetterInput{
		ResumeText:     report.OriginalResume,
		JobDescription: report.OriginalJobDescription,
		JobTitle:       report.JobTitle,
		CompanyName:    report.CompanyName,
		Tone:           tone,
	}, llm.CoverLetterFormatInstructions())

	letter, err := s.Gen.CoverLetter(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		telemetry.Error("cover_letter.failed", map[string]any{
			"user_id":   userID,
			"report_id": reportID,
			"tone":      string(tone),
			"err":       err.Error(),
		})
		return CoverLetterResult{}, err
	}

	if err := s.Repo.UpdateCoverLetter(ctx, report.ID, userID, letter, string(tone)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return CoverLetterResult{}, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return CoverLetterResult{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	metrics.IncCoverLetterRegenerated(string(tone))
	telemetry.Info("cover_letter.regenerated", map[string]any{
		"user_id":   userID,
		"report_id": report.ID,
		"tone":      string(tone),
	})
	return CoverLetterResult{ReportID: report.ID, CoverLetter: letter, Tone: tone}, nil
}

// GetReport returns the report only to its owner.
func (s *Service) GetReport(ctx context.Context, reportID, userID string) (Report, error) {
	reportID = strings.TrimSpace(reportID)
	if _, err := uuid.Parse(reportID); err != nil {
		return Report{}, ErrNotFound
	}
	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		return Report{}, err
	}
	if report.UserID != userID {
		telemetry.Warn("report.forbidden", map[string]any{
			"user_id":   userID,
			"report_id": reportID,
		})
		return Report{}, ErrForbidden
	}
	return report, nil
}

// ListReports returns the user's reports newest first.
func (s *Service) ListReports(ctx context.Context, userID string) ([]Summary, error) {
	reports, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (s *Service) fail(span trace.Span, reason, userID string, start time.Time, err error) {
	elapsed := s.clock().Sub(start)
	metrics.IncAnalysisFailed(reason)
	metrics.ObserveAnalysisDuration(elapsed)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason+" failed")
	telemetry.Error("analysis.failed", map[string]any{
		"user_id":     userID,
		"reason":      reason,
		"duration_ms": elapsed.Milliseconds(),
		"err":         err.Error(),
	})
}

func validateAnalysisRequest(req AnalysisRequest) error {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return &ValidationError{Field: "userId", Message: "is required"}
	case strings.TrimSpace(req.ResumeText) == "":
		return &ValidationError{Field: "resumeText", Message: "is required"}
	case strings.TrimSpace(req.JobDescription) == "":
		return &ValidationError{Field: "jobDescription", Message: "is required"}
	}
	return nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Service) id() string {
	if s.newID == nil {
		return uuid.NewString()
	}
	return s.newID()
}
