package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/dto"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/response"
)

type authService interface {
	LoginOfficer(ctx context.Context, req dto.OfficerLoginRequest) (*dto.LoginResponse, error)
	LoginAdmin(ctx context.Context, req dto.AdminLoginRequest) (*dto.LoginResponse, error)
	Signup(ctx context.Context, req dto.OfficerSignupRequest) (*dto.SignupResponse, error)
}

type sessionEnder interface {
	Logout(ctx context.Context, token string) error
}

// AuthHandler wires HTTP endpoints to the auth and session services.
type AuthHandler struct {
	service  authService
	sessions sessionEnder
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions sessionEnder) *AuthHandler {
	return &AuthHandler{service: svc, sessions: sessions}
}

// OfficerLogin godoc
// @Summary Officer sign-in
// @Description Authenticate a registration officer against the registry and open a portal session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.OfficerLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/officer/login [post]
func (h *AuthHandler) OfficerLogin(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "auth")
		return
	}
	var req dto.OfficerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.LoginOfficer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, noticeMeta(res.Notice))
}

// AdminLogin godoc
// @Summary Admin sign-in
// @Description Authenticate an administrator against the registry and open a portal session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.AdminLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "auth")
		return
	}
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.LoginAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, noticeMeta(res.Notice))
}

// Signup godoc
// @Summary Officer signup
// @Description Validate and forward an officer account request for admin approval
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.OfficerSignupRequest true "Signup form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/officer/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "auth")
		return
	}
	var req dto.OfficerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	res, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, res, noticeMeta(res.Notice))
}

// Me godoc
// @Summary Current session
// @Description Return the profile of the signed-in admin or officer
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"role":       session.Role,
		"officer":    session.Officer,
		"admin":      session.Admin,
		"expires_at": session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Logout
// @Description End the portal session and drop its dashboard state
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if h.sessions == nil {
		unavailable(c, "session")
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), session.ID); err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"logged_out": true},
		noticeMeta(dto.Success("Logged out", "You have been logged out successfully")))
}
