package reports

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1/users", func(c *gin.Context) { c.Set("userId", userID) })
	NewHandler(svc).RegisterRoutes(rg)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandlerAnalyzeAndFetch(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepo(), dockerAnalysisJSON)
	r := newTestRouter(svc, "user-a")

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/users/analyze", gin.H{
		"resumeText":     "Node.js and SQL",
		"jobDescription": "Node.js, SQL, Docker",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var created AnalysisResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ReportID)
	assert.Equal(t, "Hi team!", created.CoverLetters.Enthusiastic)

	rec, env = doJSON(t, r, http.MethodGet, "/api/v1/users/report/"+created.ReportID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched Report
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created.ReportID, fetched.ID)
	assert.Equal(t, "Dear hiring team,", fetched.GeneratedCoverLetter)

	rec, env = doJSON(t, r, http.MethodGet, "/api/v1/users/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Summary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
}

func TestHandlerAnalyzeValidation(t *testing.T) {
	svc, fake := newTestService(NewMemoryRepo(), dockerAnalysisJSON)
	r := newTestRouter(svc, "user-a")

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/users/analyze", gin.H{"resumeText": "resume"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 0, fake.calls)
}

func TestHandlerAnalyzeGenerationFailure(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepo(), `not json at all`)
	r := newTestRouter(svc, "user-a")

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/users/analyze", gin.H{"resumeText": "r", "jobDescription": "j"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "generation_failed", env.Code)
	assert.Equal(t, generationFailedMessage, env.Message)
}

func TestHandlerReportOwnership(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(repo, dockerAnalysisJSON)
	resp := analyzeOnce(t, svc, "user-a")

	other := newTestRouter(svc, "user-b")
	rec, env := doJSON(t, other, http.MethodGet, "/api/v1/users/report/"+resp.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", env.Code)

	rec, env = doJSON(t, other, http.MethodGet, "/api/v1/users/report/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Code)
}

func TestHandlerRegenerate(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(repo, dockerAnalysisJSON, `{"coverLetter":"Short and sweet."}`)
	resp := analyzeOnce(t, svc, "user-a")
	r := newTestRouter(svc, "user-a")

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/users/regenerate-cover-letter", gin.H{"reportId": resp.ID, "tone": "Pirate"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported_tone", env.Code)

	rec, env = doJSON(t, r, http.MethodPost, "/api/v1/users/regenerate-cover-letter", gin.H{"reportId": resp.ID, "tone": "Concise"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out CoverLetterResult
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "Short and sweet.", out.CoverLetter)
	assert.Equal(t, "Concise", string(out.Tone))

	rec, env = doJSON(t, r, http.MethodPost, "/api/v1/users/regenerate-cover-letter", gin.H{"tone": "Concise"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Code)
}
