package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"go-inventory-tims/internal/access"
	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/metrics"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/repository"
	"go-inventory-tims/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/password")
	ErrSessionRevoked     = errors.New("session has been logged out")
)

// SessionRevoker remembers logged-out token ids.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=80"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=80"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
	Role     string `json:"role" form:"role" validate:"required"`
}

type LoginResponse struct {
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	ResolveSession(ctx context.Context, token string) (*access.Session, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
	SeedAdmin(ctx context.Context, username, password string) (bool, error)
}

type authService struct {
	userRepo     repository.UserRepository
	tokens       *jwt.Manager
	sessions     SessionRevoker
	allowedRoles access.RoleSet
	log          zerolog.Logger
}

// NewAuthService builds the auth service. registerRoles lists the roles a
// caller may choose when registering; unknown names are ignored.
func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, sessions SessionRevoker, registerRoles []string, log zerolog.Logger) AuthService {
	allowed := access.NewRoleSet()
	for _, name := range registerRoles {
		if r, ok := model.ParseRole(name); ok {
			allowed[r] = struct{}{}
		}
	}
	return &authService{
		userRepo:     userRepo,
		tokens:       tokens,
		sessions:     sessions,
		allowedRoles: allowed,
		log:          log.With().Str("component", "auth").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateInput(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if user == nil || !user.CheckPassword(req.Password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Info().Str("username", req.Username).Msg("login failed")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("login")
	return &LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: *user}, nil
}

// Logout revokes token until its natural expiry. Invalid tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", claims.UserID).Msg("logout")
	return nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateInput(&req); err != nil {
		return nil, err
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return nil, apperr.Invalid("role must be one of: admin manager staff")
	}
	if !s.allowedRoles.Has(role) {
		return nil, apperr.Invalid("role %s cannot be chosen at registration", role)
	}

	user := &model.User{Username: req.Username, Role: role}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	ev := s.log.Info()
	if role == model.RoleAdmin {
		ev = s.log.Warn()
	}
	ev.Uint("user_id", user.ID).Str("username", user.Username).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// ResolveSession turns a session token into the request identity. The role
// is read from the store, not from the token.
func (s *authService) ResolveSession(ctx context.Context, token string) (*access.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &access.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		TokenID:  claims.ID,
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return apperr.Invalid("password is required")
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", user.ID).Msg("password reset")
	return nil
}

// SeedAdmin creates the bootstrap admin unless a user with username exists.
func (s *authService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	admin := &model.User{Username: username, Role: model.RoleAdmin}
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, err
	}
	s.log.Info().Str("username", username).Msg("seeded admin user")
	return true, nil
}
