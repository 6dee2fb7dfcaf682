package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentfashion/storefront/pkg/auth"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

const invalidCredentialsMessage = "Invalid email or password"

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Fullname string `json:"fullname" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (types.Registration, error) {
	user, err := s.createUser(req.Fullname, req.Email, req.Password, enums.RoleCustomer)
	if err != nil {
		return types.Registration{}, err
	}
	return types.Registration{UserID: user.ID, Success: true}, nil
}

// EnsureAdmin creates the admin account when the email is not taken yet.
func (s *Service) EnsureAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.createUser("Administrator", email, password, enums.RoleAdmin)
	if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		return nil
	}
	return err
}

func (s *Service) createUser(fullname, email, password string, role enums.Role) (types.User, error) {
	email = normalizeEmail(email)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emails[email]; exists {
		return types.User{}, pkgerrors.New(pkgerrors.CodeConflict, "Email already registered")
	}
	user := types.User{ID: uuid.NewString(), Fullname: strings.TrimSpace(fullname), Email: email, Role: role}
	s.users[user.ID] = &userRecord{User: user, PasswordHash: hash}
	s.emails[email] = user.ID
	return user, nil
}

// Login checks the credentials and mints an access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (types.AuthGrant, error) {
	email := normalizeEmail(req.Email)

	s.mu.RLock()
	var record *userRecord
	if id, ok := s.emails[email]; ok {
		record = s.users[id]
	}
	s.mu.RUnlock()

	if record == nil {
		return types.AuthGrant{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	ok, err := s.hasher.Verify(req.Password, record.PasswordHash)
	if err != nil {
		return types.AuthGrant{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return types.AuthGrant{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID: record.ID,
		Email:  record.Email,
		Role:   record.Role,
	})
	if err != nil {
		return types.AuthGrant{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return types.AuthGrant{AccessToken: token, TokenType: "bearer", UserID: record.ID}, nil
}

// Logout revokes the token's id until it would have expired anyway. Expired or
// unparsable tokens are accepted silently.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, token)
	if err != nil || claims.ID == "" {
		return nil
	}
	until := s.now().Add(s.jwt.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = until
	s.pruneRevokedLocked()
	return nil
}

// IsRevoked reports whether the token id was logged out.
func (s *Service) IsRevoked(_ context.Context, jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *Service) pruneRevokedLocked() {
	now := s.now()
	for jti, until := range s.revoked {
		if until.Before(now.Add(-time.Minute)) {
			delete(s.revoked, jti)
		}
	}
}

// GetUser returns the profile of userID.
func (s *Service) GetUser(_ context.Context, userID string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.users[userID]
	if !ok {
		return types.User{}, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return record.User, nil
}
