package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type sessionStore interface {
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionServiceConfig tunes session lifetimes.
type SessionServiceConfig struct {
	DefaultTTL time.Duration
}

// SessionService owns the portal's session lifecycle: every signed-in admin or officer is one Session.
type SessionService struct {
	store  sessionStore
	logger *zap.Logger
	cfg    SessionServiceConfig
	now    func() time.Time

	mu       sync.RWMutex
	onLogout []func(sessionID string)
}

// NewSessionService constructs a SessionService.
func NewSessionService(store sessionStore, cfg SessionServiceConfig, logger *zap.Logger) *SessionService {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{store: store, logger: logger, cfg: cfg, now: time.Now}
}

// OnLogout registers fn to run after a session ends.
func (s *SessionService) OnLogout(fn func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Create starts a session for a registry token. The session lives as long as the token's exp claim,
// or the default TTL when the token carries none.
func (s *SessionService) Create(ctx context.Context, role models.Role, registryToken string, officer *models.OfficerProfile, admin *models.AdminProfile) (*models.Session, error) {
	now := s.now().UTC()
	ttl := s.cfg.DefaultTTL
	if exp, ok := tokenExpiry(registryToken); ok {
		ttl = exp.Sub(now)
	}
	if ttl <= 0 {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "registry token already expired")
	}

	session := &models.Session{
		ID:            uuid.NewString(),
		Role:          role,
		RegistryToken: registryToken,
		Officer:       officer,
		Admin:         admin,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	if err := s.store.Save(ctx, session, ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	s.logger.Info("session started", zap.String("role", string(role)), zap.Time("expires_at", session.ExpiresAt))
	return session, nil
}

// Resolve loads the session for a portal token.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.store.Get(ctx, token)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrSessionExpired, "session expired or invalid")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Logout ends a session and runs the registered logout hooks.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	s.mu.RLock()
	hooks := append([]func(string){}, s.onLogout...)
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(token)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the registry alone holds the key.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
