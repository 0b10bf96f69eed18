package auth

import (
	"errors"
	"time"

	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/pkg/jwt"
)

// Config holds the token and password-hashing settings of the auth
// service, loaded from the environment at process startup.
type Config struct {
	SigningSecret   string        `env:"SECRET_KEY,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"` // 7 days
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
}

// TokenPair is what login and refresh hand back to the session boundary.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenCodec issues and decodes the access/refresh pair for a user. It
// wraps the jwt codec with the app's claim shape and TTLs; kind checks
// stay with the caller, matching the codec contract.
type TokenCodec struct {
	codec      *jwt.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(cfg Config) (*TokenCodec, error) {
	codec, err := jwt.New(cfg.SigningSecret)
	if err != nil {
		return nil, err
	}
	return &TokenCodec{
		codec:      codec,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// IssuePair mints one access and one refresh token scoped to u.
func (t *TokenCodec) IssuePair(u *user.User) (TokenPair, error) {
	access, err := t.codec.Issue(jwt.Claims{
		Subject: u.Username,
		UserID:  u.ID,
		Kind:    jwt.KindAccess,
	}, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := t.codec.Issue(jwt.Claims{
		Subject: u.Username,
		UserID:  u.ID,
		Kind:    jwt.KindRefresh,
	}, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Decode verifies signature and expiry and returns the claims. All decode
// failures collapse to ErrInvalidToken; the caller checks the kind.
func (t *TokenCodec) Decode(token string) (jwt.Claims, error) {
	claims, err := t.codec.Parse(token)
	if err != nil {
		return jwt.Claims{}, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// AccessTTL is exposed so the session boundary can align cookie lifetimes
// with token expiry.
func (t *TokenCodec) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL mirrors AccessTTL for the refresh cookie.
func (t *TokenCodec) RefreshTTL() time.Duration { return t.refreshTTL }
