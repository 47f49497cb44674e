package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/AnthoniusHendriyanto/travel-auth/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	autherror "github.com/AnthoniusHendriyanto/travel-auth/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenGenerator interface {
	IssueAccess(userID, email string) (string, error)
	IssueRefresh(userID string) (string, error)
	VerifyAccess(tokenString string) (*JWTCustomClaims, error)
	VerifyRefresh(tokenString string) (*JWTCustomClaims, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
	}
}

// IssueAccess signs a short-lived token carrying the account id and email.
func (ts *TokenService) IssueAccess(userID, email string) (string, error) {
	claims := ts.newClaims(userID, ts.AccessTokenExpiry)
	claims.Email = email
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.AccessTokenSecret))
}

// IssueRefresh signs a long-lived token carrying only the account id. The
// random jti keeps tokens issued within the same second distinct.
func (ts *TokenService) IssueRefresh(userID string) (string, error) {
	claims := ts.newClaims(userID, ts.RefreshTokenExpiry)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.RefreshTokenSecret))
}

func (ts *TokenService) newClaims(userID string, ttl time.Duration) JWTCustomClaims {
	now := time.Now()
	return JWTCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}

// VerifyAccess parses and validates the given access token string.
func (ts *TokenService) VerifyAccess(tokenString string) (*JWTCustomClaims, error) {
	return verify(tokenString, ts.AccessTokenSecret)
}

func (ts *TokenService) VerifyRefresh(tokenString string) (*JWTCustomClaims, error) {
	return verify(tokenString, ts.RefreshTokenSecret)
}

// verify returns ErrTokenExpired for an expired but otherwise valid token and
// ErrTokenInvalid for everything else.
func verify(tokenString, secret string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", autherror.ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, autherror.ErrTokenInvalid
	}

	return claims, nil
}
