package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-analyzer/internal/llm"
)

// MemoryRepo stores reports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Report
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Report),
		now:  time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[report.ID] = cloneReport(report)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.byID[reportID]
	if !ok {
		return Report{}, ErrNotFound
	}
	return cloneReport(report), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Report, 0)
	for _, report := range r.byID {
		if report.UserID == userID {
			out = append(out, cloneReport(report))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateCoverLetter(ctx context.Context, reportID, userID, letter, tone string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.byID[reportID]
	if !ok || report.UserID != userID {
		return ErrNotFound
	}
	report.GeneratedCoverLetter = letter
	report.CoverLetterTone = llm.Tone(tone)
	report.UpdatedAt = r.now().UTC()
	r.byID[reportID] = report
	return nil
}

// cloneReport copies the slices so callers cannot mutate stored state.
func cloneReport(in Report) Report {
	out := in
	out.KeywordAnalysis.Found = cloneStrings(in.KeywordAnalysis.Found)
	out.KeywordAnalysis.Missing = cloneStrings(in.KeywordAnalysis.Missing)
	if in.LanguageAnalysis != nil {
		la := *in.LanguageAnalysis
		la.Improvements = cloneStrings(in.LanguageAnalysis.Improvements)
		out.LanguageAnalysis = &la
	}
	if in.ResumeSuggestions != nil {
		out.ResumeSuggestions = make([]llm.SectionSuggestions, len(in.ResumeSuggestions))
		for i, section := range in.ResumeSuggestions {
			section.Suggestions = append(section.Suggestions[:0:0], section.Suggestions...)
			out.ResumeSuggestions[i] = section
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

var _ Repo = (*MemoryRepo)(nil)
