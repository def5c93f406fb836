package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/eventstaff/attendance/internal"
	userDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/user"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGeneratorAPI
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		logger:         logger,
		now:            time.Now,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err, "username", dto.Username)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrInvalidCredentials
	}

	u := coreuser.FromDataModel(row)
	if err := coreuser.VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login rejected", "username", dto.Username)
		return nil, internal.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	tokens, err := s.IssueTokens(u)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record last login", "error", err, "user_id", u.ID)
	} else {
		u.LastLogin = &now
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return &LoginResult{User: u, Tokens: tokens}, nil
}

// IssueTokens signs a fresh access and refresh pair for u.
func (s *Service) IssueTokens(u *coreuser.User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL() / time.Second),
	}, nil
}

// RefreshTokens validates refresh token and returns new tokens. The user is
// reloaded so role changes and deactivation take effect.
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.IssueTokens(u)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolvePrincipal backs the authentication middleware.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}

func (s *Service) Me(ctx context.Context, principal *internal.Principal) (*coreuser.User, error) {
	if principal == nil {
		return nil, internal.ErrInvalidToken
	}
	return s.activeUser(ctx, principal.UserID)
}

func (s *Service) activeUser(ctx context.Context, id int64) (*coreuser.User, error) {
	row, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load user", "error", err, "user_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrInvalidToken
	}
	if !row.IsActive {
		return nil, internal.ErrUserInactive
	}
	return coreuser.FromDataModel(row), nil
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration {
	return j.AccessTokenTTL
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(u *coreuser.User) (string, error) {
	return j.sign(u, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(u *coreuser.User) (string, error) {
	return j.sign(u, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(u *coreuser.User, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(u.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
