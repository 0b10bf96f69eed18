// Package auth implements the registration, login and token-refresh flows
// and the cookie session boundary in front of them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashokafoundation/website/internal/user"
	"github.com/ashokafoundation/website/pkg/jwt"
	"github.com/ashokafoundation/website/pkg/validator"
)

// Directory is the slice of the user repository the auth flows need.
// Declared here so the service can be tested against a fake.
type Directory interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	Create(ctx context.Context, u *user.User) (*user.User, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service orchestrates registration, login and refresh. All collaborators
// arrive through the constructor; the service holds no ambient state.
type Service struct {
	directory  Directory
	tokens     *TokenCodec
	policy     validator.PasswordPolicy
	bcryptCost int
	logger     *slog.Logger
}

func NewService(directory Directory, tokens *TokenCodec, policy validator.PasswordPolicy, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory:  directory,
		tokens:     tokens,
		policy:     policy,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register normalizes and validates the input, rejects colliding
// identifiers with a field-attributed error, hashes the password and
// persists the user. Username and email existence are checked
// independently so the error can name which field collided; the database
// constraint still backstops a losing concurrent insert.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	input = input.Normalize()
	if err := input.Validate(s.policy); err != nil {
		return nil, err
	}

	if _, err := s.directory.FindByUsername(ctx, input.Username); err == nil {
		return nil, &user.DuplicateError{Field: "username"}
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.directory.FindByEmail(ctx, input.Email); err == nil {
		return nil, &user.DuplicateError{Field: "email"}
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	created, err := s.directory.Create(ctx, &user.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", created.ID),
		slog.String("username", created.Username),
	)
	return created, nil
}

// Login resolves the identifier, verifies the password and issues a token
// pair. Unknown identifier and wrong password return the same error value;
// a malformed identifier fails the same way without a directory lookup.
func (s *Service) Login(ctx context.Context, identifier, password string) (*user.User, TokenPair, error) {
	identifier = NormalizeIdentifier(identifier)
	if !ValidIdentifierFormat(identifier) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, fmt.Errorf("find by identifier: %w", err)
	}

	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountInactive
	}

	if !VerifyPassword(password, u.PasswordHash) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	s.recordLogin(ctx, u)

	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return u, pair, nil
}

// Refresh validates a refresh token and rotates the pair. The stored
// username must still match the token subject, which invalidates tokens
// that survived a rename.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrMissingToken
	}

	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.Kind != jwt.KindRefresh {
		return TokenPair{}, ErrWrongTokenKind
	}

	u, err := s.directory.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrUserMismatch
		}
		return TokenPair{}, fmt.Errorf("find by id: %w", err)
	}
	if u.Username != claims.Subject {
		return TokenPair{}, ErrUserMismatch
	}
	if !u.IsActive {
		return TokenPair{}, ErrAccountInactive
	}

	s.recordLogin(ctx, u)

	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// recordLogin updates last_login_at best-effort; a failure is logged, not
// surfaced, because the authentication itself already succeeded.
func (s *Service) recordLogin(ctx context.Context, u *user.User) {
	if err := s.directory.SetLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login",
			slog.Int64("user_id", u.ID),
			slog.Any("error", err),
		)
	}
}
