package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/bancadosucesso/storefront-backend/pkg/auth"
	"github.com/bancadosucesso/storefront-backend/pkg/auth/session"
	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	"github.com/bancadosucesso/storefront-backend/pkg/enums"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/security"
)

// UserDTO is the signed-in account shape returned to the back office.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

// LoginResult carries the minted token alongside the account.
type LoginResult struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
	User        UserDTO `json:"user"`
}

// Service handles back-office sign-in and sign-out.
type Service interface {
	Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error)
	Refresh(ctx context.Context, accessID string, userID uuid.UUID) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Create(ctx context.Context, accessID, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type service struct {
	users    userStore
	sessions sessionManager
	limiter  rateLimiter
	jwtCfg   config.JWTConfig
	rlCfg    config.AuthRateLimitConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the admin auth service.
func NewService(
	users userStore,
	sessions sessionManager,
	limiter rateLimiter,
	jwtCfg config.JWTConfig,
	rlCfg config.AuthRateLimitConfig,
	logg *logger.Logger,
) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	return &service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		jwtCfg:   jwtCfg,
		rlCfg:    rlCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login verifies credentials and mints an access token bound to a tracked
// session. Unknown email, wrong password, and disabled accounts all produce
// the same response so the endpoint cannot be used to probe for accounts.
func (s *service) Login(ctx context.Context, email, password, clientIP string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allowAttempt(ctx, "login:email:"+email, int64(s.rlCfg.LoginEmailLimit)); err != nil {
		return nil, err
	}
	if clientIP != "" {
		if err := s.allowAttempt(ctx, "login:ip:"+clientIP, int64(s.rlCfg.LoginIPLimit)); err != nil {
			return nil, err
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	now := s.now().UTC()
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Create(ctx, accessID, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "stamp last login")
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		User: UserDTO{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        user.Role,
			LastLoginAt: &now,
		},
	}, nil
}

// Refresh rotates the caller's session: a fresh token and session are issued
// and the presented one is revoked, so a stolen token stops working at most
// one expiry window after the legitimate client refreshes.
func (s *service) Refresh(ctx context.Context, accessID string, userID uuid.UUID) (*LoginResult, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}

	now := s.now().UTC()
	nextAccessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    nextAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Create(ctx, nextAccessID, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil && s.logg != nil {
		// The old session still times out on its own TTL.
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "revoke replaced session")
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		User: UserDTO{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        user.Role,
			LastLoginAt: user.LastLoginAt,
		},
	}, nil
}

// Logout revokes the session behind the token's access id. Revoking an
// already-revoked session is not an error.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) allowAttempt(ctx context.Context, scope string, limit int64) error {
	if limit <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, s.rlCfg.LoginWindow)
	if err != nil {
		// Redis being down should not lock every admin out.
		if s.logg != nil {
			s.logg.Error(ctx, "login rate limit check", err)
		}
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
	}
	return nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
