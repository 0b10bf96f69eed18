// Package jwt implements the signed session tokens used by the web app.
// Tokens are HS256 JWTs carrying the username, the numeric user id and a
// kind discriminator (access or refresh). Expiry is enforced at parse time;
// tokens are never stored server-side.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	headerType      = "JWT"
	headerAlgorithm = "HS256"
)

// Kind discriminates what a token may be used for. The codec does not
// enforce it; callers must check the kind against the operation consuming
// the token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the signed claim set embedded in every session token.
type Claims struct {
	Subject   string `json:"sub"`
	UserID    int64  `json:"user_id"`
	Kind      Kind   `json:"kind"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Valid checks the expiration claim against the current time.
func (c Claims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Codec signs and verifies session tokens with a shared HMAC-SHA256 secret.
// Issue and Parse are pure computations and safe for concurrent use.
type Codec struct {
	signingKey []byte
}

// New creates a Codec from the shared signing secret. The secret should be
// at least 32 bytes for adequate HMAC-SHA256 security.
func New(signingKey string) (*Codec, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	return &Codec{signingKey: []byte(signingKey)}, nil
}

// Issue signs claims with an absolute expiration of now + ttl.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()

	headerJSON, err := json.Marshal(header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + c.sign(payload), nil
}

// Parse verifies the signature and expiration of token and returns its
// claims. Structurally malformed, tampered and expired tokens all fail;
// expired tokens are distinguishable via ErrExpiredToken, everything else
// maps to ErrInvalidToken or ErrInvalidSignature.
func (c *Codec) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	// Constant-time signature check before touching any decoded content.
	payload := parts[0] + "." + parts[1]
	expected := c.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return Claims{}, ErrInvalidToken
	}
	// Reject anything but HS256 to prevent algorithm confusion.
	if h.Algorithm != headerAlgorithm {
		return Claims{}, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	if err := claims.Valid(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (c *Codec) sign(payload string) string {
	h := hmac.New(sha256.New, c.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// JWT uses unpadded base64url per RFC 7515.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
