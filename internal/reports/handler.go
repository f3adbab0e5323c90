package reports

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

const generationFailedMessage = "Failed to generate analysis. Please try again shortly."

// Handler wires HTTP handlers to the reports service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/reports", h.listReports)
	rg.GET("/report/:reportId", h.getReport)
	rg.POST("/regenerate-cover-letter", h.regenerateCoverLetter)
}

type analyzeBody struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type regenerateBody struct {
	ReportID string `json:"reportId"`
	Tone     string `json:"tone"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var body analyzeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}

	resp, err := h.Svc.Analyze(c.Request.Context(), AnalysisRequest{
		UserID:         userID,
		ResumeText:     body.ResumeText,
		JobDescription: body.JobDescription,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("reportId", resp.ID)
	respond.JSON(c, http.StatusCreated, resp, "Analysis complete")
}

func (h *Handler) listReports(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.Svc.ListReports(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list reports")
		return
	}
	respond.OK(c, items, "Reports retrieved")
}

func (h *Handler) getReport(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	reportID := strings.TrimSpace(c.Param("reportId"))
	c.Set("reportId", reportID)

	report, err := h.Svc.GetReport(c.Request.Context(), reportID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, report, "Report retrieved")
}

func (h *Handler) regenerateCoverLetter(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var body regenerateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	if strings.TrimSpace(body.ReportID) == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "reportId is required")
		return
	}
	c.Set("reportId", body.ReportID)

	result, err := h.Svc.RegenerateCoverLetter(c.Request.Context(), body.ReportID, body.Tone, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result, "Cover letter regenerated")
}

func writeError(c *gin.Context, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, validation.Error())
	case errors.Is(err, llm.ErrUnsupportedTone):
		respond.Error(c, http.StatusBadRequest, respond.CodeUnsupportedTone, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report not found")
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "you do not have access to this report")
	case errors.Is(err, llm.ErrGenerationFailed):
		respond.Error(c, http.StatusInternalServerError, respond.CodeGenerationFailed, generationFailedMessage)
	case errors.Is(err, ErrPersistenceFailed):
		respond.Error(c, http.StatusInternalServerError, respond.CodePersistenceFailed, "failed to save report")
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "internal server error")
	}
}
