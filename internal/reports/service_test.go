package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/llm"
)

const dockerAnalysisJSON = `{
  "jobTitle": "Backend Engineer",
  "companyName": "",
  "matchScore": 64,
  "keywordAnalysis": {"found": ["Node.js", "SQL"], "missing": ["Docker"]},
  "resumeSuggestions": [
    {"section": "Experience", "suggestions": [
      {"insight": "Mention containers you have touched", "original": "- Built APIs", "suggestion": "- Built Node.js APIs\n- Backed by SQL"}
    ]}
  ],
  "generatedCoverLetter": {"Professional": "Dear hiring team,", "Enthusiastic": "Hi team!", "Concise": "Hello."}
}`

// fakeCompleter counts model calls and records prompts.
type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	texts   []string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	text := f.texts[0]
	if len(f.texts) > 1 {
		f.texts = f.texts[1:]
	}
	return llm.Completion{Text: text, Provider: "fake", Model: "fake-1"}, nil
}

type failingRepo struct {
	*MemoryRepo
	createErr error
	updateErr error
}

func (r *failingRepo) Create(ctx context.Context, report Report) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepo.Create(ctx, report)
}

func (r *failingRepo) UpdateCoverLetter(ctx context.Context, reportID, userID, letter, tone string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.MemoryRepo.UpdateCoverLetter(ctx, reportID, userID, letter, tone)
}

func newTestService(repo Repo, texts ...string) (*Service, *fakeCompleter) {
	fake := &fakeCompleter{texts: texts}
	return NewService(repo, llm.NewClient(fake), "fake", "fake-1"), fake
}

func analyzeOnce(t *testing.T, svc *Service, userID string) AnalysisResponse {
	t.Helper()
	resp, err := svc.Analyze(context.Background(), AnalysisRequest{
		UserID:         userID,
		ResumeText:     "Experienced backend engineer using Node.js and SQL\n- Built APIs",
		JobDescription: "Seeking engineer skilled in Node.js, SQL, and Docker",
	})
	require.NoError(t, err)
	return resp
}

func TestAnalyzeReportsMissingKeyword(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, dockerAnalysisJSON)

	resp := analyzeOnce(t, svc, "user-a")

	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, fake.prompts[0], "Seeking engineer skilled in Node.js, SQL, and Docker")
	assert.Contains(t, fake.prompts[0], "Experienced backend engineer using Node.js and SQL")
	assert.Contains(t, resp.KeywordAnalysis.Missing, "Docker")
	assert.GreaterOrEqual(t, resp.MatchScore, 0)
	assert.LessOrEqual(t, resp.MatchScore, 100)
	assert.Equal(t, llm.DefaultCompanyName, resp.CompanyName)
	assert.Equal(t, resp.ID, resp.ReportID)

	for _, tone := range llm.Tones() {
		assert.NotEmpty(t, resp.CoverLetters.Get(tone), "tone %s", tone)
	}
	assert.Equal(t, "Dear hiring team,", resp.GeneratedCoverLetter)
	assert.Equal(t, llm.ToneProfessional, resp.CoverLetterTone)
	assert.Equal(t, "- Built Node.js APIs\n- Backed by SQL", resp.ResumeSuggestions[0].Suggestions[0].Suggestion)
}

func TestAnalyzeRoundTrip(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(repo, dockerAnalysisJSON)
	resp := analyzeOnce(t, svc, "user-a")

	stored, err := svc.GetReport(context.Background(), resp.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, resp.JobTitle, stored.JobTitle)
	assert.Equal(t, resp.MatchScore, stored.MatchScore)
	assert.Equal(t, resp.ResumeSuggestions, stored.ResumeSuggestions)
	assert.Equal(t, "fake", stored.Provider)
	assert.NotEmpty(t, stored.OriginalResume)
	assert.NotEmpty(t, stored.OriginalJobDescription)
}

func TestAnalyzeRejectsEmptyInputWithoutModelCall(t *testing.T) {
	tests := []struct {
		name  string
		req   AnalysisRequest
		field string
	}{
		{name: "empty job description", req: AnalysisRequest{UserID: "u", ResumeText: "resume", JobDescription: ""}, field: "jobDescription"},
		{name: "blank resume", req: AnalysisRequest{UserID: "u", ResumeText: "   ", JobDescription: "jd"}, field: "resumeText"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepo()
			svc, fake := newTestService(repo, dockerAnalysisJSON)

			_, err := svc.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, 0, fake.calls)

			list, err := repo.ListByUser(context.Background(), "u")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestAnalyzeGenerationFailurePersistsNothing(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, `{"jobTitle": "x", "matchScore": 150}`)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{UserID: "u", ResumeText: "r", JobDescription: "j"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
	assert.Equal(t, 1, fake.calls)

	list, err := repo.ListByUser(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzePersistenceFailure(t *testing.T) {
	repo := &failingRepo{MemoryRepo: NewMemoryRepo(), createErr: errors.New("connection reset")}
	svc, _ := newTestService(repo, dockerAnalysisJSON)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{UserID: "u", ResumeText: "r", JobDescription: "j"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistenceFailed)
}

func TestGetReportOwnership(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(repo, dockerAnalysisJSON)
	resp := analyzeOnce(t, svc, "user-a")

	got, err := svc.GetReport(context.Background(), resp.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "user-a", got.UserID)

	_, err = svc.GetReport(context.Background(), resp.ID, "user-b")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetReport(context.Background(), uuid.NewString(), "user-a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetReport(context.Background(), "not-a-uuid", "user-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReportsNewestFirstPerUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(repo, dockerAnalysisJSON)

	base := svc.now()
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := analyzeOnce(t, svc, "user-a")
	second := analyzeOnce(t, svc, "user-a")
	analyzeOnce(t, svc, "user-b")

	list, err := svc.ListReports(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRegenerateCoverLetter(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, dockerAnalysisJSON, `{"coverLetter": "Hey there, I am thrilled!"}`)
	resp := analyzeOnce(t, svc, "user-a")

	out, err := svc.RegenerateCoverLetter(context.Background(), resp.ID, "enthusiastic", "user-a")
	require.NoError(t, err)
	assert.Equal(t, llm.ToneEnthusiastic, out.Tone)
	assert.Equal(t, "Hey there, I am thrilled!", out.CoverLetter)
	assert.Equal(t, 2, fake.calls)
	assert.Contains(t, fake.prompts[1], "Tone: Enthusiastic")
	assert.Contains(t, fake.prompts[1], "Experienced backend engineer using Node.js and SQL")

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hey there, I am thrilled!", stored.GeneratedCoverLetter)
	assert.Equal(t, llm.ToneEnthusiastic, stored.CoverLetterTone)
	assert.Equal(t, resp.MatchScore, stored.MatchScore)
}

func TestRegenerateUnsupportedToneMutatesNothing(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, dockerAnalysisJSON)
	resp := analyzeOnce(t, svc, "user-a")
	before, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)

	_, err = svc.RegenerateCoverLetter(context.Background(), resp.ID, "Pirate", "user-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnsupportedTone)
	assert.Equal(t, 1, fake.calls, "no generation for an unsupported tone")

	after, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegenerateOwnership(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, dockerAnalysisJSON)
	resp := analyzeOnce(t, svc, "user-a")

	_, err := svc.RegenerateCoverLetter(context.Background(), resp.ID, "Concise", "user-b")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RegenerateCoverLetter(context.Background(), uuid.NewString(), "Concise", "user-a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, fake.calls)
}

func TestRegenerateGenerationFailureKeepsLetter(t *testing.T) {
	repo := NewMemoryRepo()
	svc, fake := newTestService(repo, dockerAnalysisJSON, `{"coverLetter": ""}`)
	resp := analyzeOnce(t, svc, "user-a")

	_, err := svc.RegenerateCoverLetter(context.Background(), resp.ID, "Concise", "user-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
	assert.Equal(t, 2, fake.calls)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dear hiring team,", stored.GeneratedCoverLetter)
	assert.Equal(t, llm.ToneProfessional, stored.CoverLetterTone)
}
