package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-analyzer/internal/llm"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const reportColumns = `id, user_id, job_title, company_name, match_score, keyword_analysis, language_analysis,
       resume_suggestions, generated_cover_letter, cover_letter_tone, original_resume,
       original_job_description, provider, model, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (
	id, user_id, job_title, company_name, match_score, keyword_analysis, language_analysis,
	resume_suggestions, generated_cover_letter, cover_letter_tone, original_resume,
	original_job_description, provider, model, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	keywords, err := json.Marshal(report.KeywordAnalysis)
	if err != nil {
		return fmt.Errorf("marshal keyword_analysis: %w", err)
	}
	var language any
	if report.LanguageAnalysis != nil {
		payload, err := json.Marshal(report.LanguageAnalysis)
		if err != nil {
			return fmt.Errorf("marshal language_analysis: %w", err)
		}
		language = payload
	}
	suggestions := report.ResumeSuggestions
	if suggestions == nil {
		suggestions = []llm.SectionSuggestions{}
	}
	suggestionsPayload, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshal resume_suggestions: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.JobTitle,
		report.CompanyName,
		report.MatchScore,
		keywords,
		language,
		suggestionsPayload,
		report.GeneratedCoverLetter,
		string(report.CoverLetterTone),
		report.OriginalResume,
		report.OriginalJobDescription,
		report.Provider,
		report.Model,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE id = $1
LIMIT 1`
	report, err := scanReport(r.DB.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return report, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	query := `
SELECT ` + reportColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) UpdateCoverLetter(ctx context.Context, reportID, userID, letter, tone string) error {
	const query = `
UPDATE reports
SET generated_cover_letter = $3, cover_letter_tone = $4, updated_at = now()
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, reportID, userID, letter, tone)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var keywords []byte
	var language []byte
	var suggestions []byte
	var tone string
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.JobTitle,
		&report.CompanyName,
		&report.MatchScore,
		&keywords,
		&language,
		&suggestions,
		&report.GeneratedCoverLetter,
		&tone,
		&report.OriginalResume,
		&report.OriginalJobDescription,
		&report.Provider,
		&report.Model,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	report.CoverLetterTone = llm.Tone(tone)

	if err := json.Unmarshal(keywords, &report.KeywordAnalysis); err != nil {
		return Report{}, fmt.Errorf("decode keyword_analysis: %w", err)
	}
	if len(language) > 0 && string(language) != "null" {
		var la llm.LanguageAnalysis
		if err := json.Unmarshal(language, &la); err != nil {
			return Report{}, fmt.Errorf("decode language_analysis: %w", err)
		}
		report.LanguageAnalysis = &la
	}
	if err := json.Unmarshal(suggestions, &report.ResumeSuggestions); err != nil {
		return Report{}, fmt.Errorf("decode resume_suggestions: %w", err)
	}
	return report, nil
}

var _ Repo = (*PGRepo)(nil)
