package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type authRegistry interface {
	OfficerLogin(ctx context.Context, email, password string) (*registry.OfficerLoginResult, error)
	AdminLogin(ctx context.Context, username, password string) (*registry.AdminLoginResult, error)
	SignupOfficer(ctx context.Context, signup registry.OfficerSignup) (string, error)
}

type sessionStarter interface {
	Create(ctx context.Context, role models.Role, registryToken string, officer *models.OfficerProfile, admin *models.AdminProfile) (*models.Session, error)
}

const (
	loginFailedTitle  = "Login Failed"
	signupDefaultDone = "Your application has been submitted for admin approval. You will be notified once approved."
	msgBackendDown    = "Network error. Please check if the backend server is running."
)

// AuthService signs officers and admins in against the registry and handles officer signup.
type AuthService struct {
	registry  authRegistry
	sessions  sessionStarter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(reg authRegistry, sessions sessionStarter, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{registry: reg, sessions: sessions, validator: validate, logger: logger}
}

// LoginOfficer authenticates an officer and opens a portal session.
func (s *AuthService) LoginOfficer(ctx context.Context, req dto.OfficerLoginRequest) (*dto.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	res, err := s.registry.OfficerLogin(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("officer login rejected", zap.String("email", req.Email), zap.Error(err))
		return nil, failWithNotice(authFailure(err, "Invalid credentials"), loginFailedTitle)
	}

	officer := res.Officer
	session, err := s.sessions.Create(ctx, models.RoleOfficer, res.Token, &officer, nil)
	if err != nil {
		return nil, err
	}
	return loginResponse(session), nil
}

// LoginAdmin authenticates an administrator and opens a portal session.
func (s *AuthService) LoginAdmin(ctx context.Context, req dto.AdminLoginRequest) (*dto.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Username and password are required")
	}

	res, err := s.registry.AdminLogin(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Info("admin login rejected", zap.String("username", req.Username), zap.Error(err))
		return nil, failWithNotice(authFailure(err, "Invalid credentials"), loginFailedTitle)
	}

	admin := res.Admin
	session, err := s.sessions.Create(ctx, models.RoleAdmin, res.Token, nil, &admin)
	if err != nil {
		return nil, err
	}
	return loginResponse(session), nil
}

// Signup validates an officer account request and forwards it to the registry.
func (s *AuthService) Signup(ctx context.Context, req dto.OfficerSignupRequest) (*dto.SignupResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)

	if err := ValidateSignupForm(req); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, failWithNotice(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide a valid email, station and constituency"), "")
	}

	message, err := s.registry.SignupOfficer(ctx, registry.OfficerSignup{
		FullName:     req.FullName,
		IDNumber:     req.IDNumber,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Station:      req.Station,
		Constituency: req.Constituency,
		Password:     req.Password,
	})
	if err != nil {
		return nil, failWithNotice(authFailure(err, "Failed to submit application"), "")
	}
	s.logger.Info("officer signup submitted", zap.String("email", req.Email))
	return &dto.SignupResponse{
		Message: message,
		Notice:  dto.Success("Application Submitted", signupDefaultDone),
	}, nil
}

// authFailure is registryFailure with the sign-in screens' wording for an unreachable registry.
func authFailure(err error, fallback string) *appErrors.Error {
	if registry.IsNetwork(err) {
		return appErrors.Clone(appErrors.FromError(err), msgBackendDown)
	}
	return registryFailure(err, fallback)
}

func loginResponse(session *models.Session) *dto.LoginResponse {
	return &dto.LoginResponse{
		Token:     session.ID,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		Officer:   session.Officer,
		Admin:     session.Admin,
		Notice:    dto.Success("Login Successful", "Welcome back! Redirecting to dashboard..."),
	}
}
