package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/respond"
	"resume-analyzer/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

type loginRequest struct {
	IDToken string `json:"idToken"`
}

// RegisterRoutes attaches public login routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "idToken is required")
		return
	}

	session, err := h.Svc.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredential):
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "Invalid or expired credential")
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "conflict", "This email is already linked to another account")
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Login failed")
		}
		return
	}

	respond.OK(c, session, "Login successful")
}
