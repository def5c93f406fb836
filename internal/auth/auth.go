package auth

import (
	"context"
	"time"

	"github.com/eventstaff/attendance/internal"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenGeneratorAPI signs and checks the two token kinds. Each kind has its
// own secret, so a refresh token never passes as an access token.
type TokenGeneratorAPI interface {
	GenerateAccessToken(u *coreuser.User) (token string, err error)
	GenerateRefreshToken(u *coreuser.User) (token string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTTL() time.Duration
}

// ServiceAPI is what the handler and the auth middleware need.
type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error)
	Me(ctx context.Context, principal *internal.Principal) (*coreuser.User, error)
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type LoginResult struct {
	User   *coreuser.User `json:"user"`
	Tokens AuthTokens     `json:"tokens"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
