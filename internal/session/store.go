// Package session owns the signed-in identity: the bearer token held by the
// transport and the user profile persisted next to it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/agentfashion/storefront/internal/transport"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/storage"
	"github.com/agentfashion/storefront/pkg/types"
	"github.com/agentfashion/storefront/pkg/validation"
)

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Cause says why the session changed.
type Cause string

const (
	CauseRestore Cause = "restore"
	CauseLogin   Cause = "login"
	CauseLogout  Cause = "logout"
	CauseExpired Cause = "expired"
)

const expiredMessage = "Your session has expired. Please sign in again."

// Session is the token plus the profile it belongs to.
type Session struct {
	Token string
	User  types.User
}

// Change is delivered to listeners once per real transition.
type Change struct {
	From    State
	To      State
	Cause   Cause
	Session Session
}

type Listener func(ctx context.Context, change Change)

type api interface {
	Do(ctx context.Context, method, path string, body any, shape transport.Shape, out any, opts ...transport.RequestOption) error
	Tokens() *transport.TokenHolder
}

// StoreParams bundles the dependencies required to build a session store.
type StoreParams struct {
	API     api
	Storage storage.Store
	Logger  *logger.Logger
}

type Store struct {
	api     api
	storage storage.Store
	logg    *logger.Logger

	mu      sync.RWMutex
	state   State
	session Session
	lastErr error

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewStore returns an anonymous store. Call InitializeAuth to restore a persisted session.
func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		api:     params.API,
		storage: params.Storage,
		logg:    logg,
		state:   StateAnonymous,
	}, nil
}

// OnChange registers fn. Listeners run synchronously, outside the store's lock.
func (s *Store) OnChange(fn Listener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// Current returns the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.state == StateAuthenticated
}

// Err returns the error recorded by the last failed operation.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ErrorMessage returns the user-facing message of Err, or "".
func (s *Store) ErrorMessage() string {
	err := s.Err()
	if err == nil {
		return ""
	}
	if coded := pkgerrors.As(err); coded != nil && coded.Message() != "" {
		return coded.Message()
	}
	return err.Error()
}

func (s *Store) ClearError() {
	s.setErr(nil)
}

// InitializeAuth restores the persisted session without contacting the backend.
// A token without a user, or a user without a token, is wiped.
func (s *Store) InitializeAuth(ctx context.Context) error {
	token, err := s.api.Tokens().Load(ctx)
	if err != nil {
		return err
	}

	user, userErr := s.loadUser(ctx)
	if token == "" || userErr != nil {
		if userErr != nil && !errors.Is(userErr, storage.ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", userErr.Error()), "discarding unreadable persisted user")
		}
		if token != "" || !errors.Is(userErr, storage.ErrNotFound) {
			s.logg.Warn(ctx, "discarding partial persisted session")
		}
		s.wipePersisted(ctx)
		return nil
	}

	s.transition(ctx, StateAuthenticated, CauseRestore, Session{Token: token, User: user})
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "session restored")
	return nil
}

func (s *Store) loadUser(ctx context.Context) (types.User, error) {
	raw, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		return types.User{}, err
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return types.User{}, fmt.Errorf("decode persisted user: %w", err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return types.User{}, fmt.Errorf("persisted user has no id")
	}
	return user, nil
}

// LoginInput is validated before any request is sent.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates, stores the token, fetches and persists the profile, and
// transitions to authenticated. On failure it records the error and returns false.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	in := LoginInput{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(in); err != nil {
		s.setErr(err)
		return false
	}
	s.setErr(nil)

	var grant types.AuthGrant
	if err := s.api.Do(ctx, http.MethodPost, "/v1/auth/login", in, transport.Info(), &grant); err != nil {
		s.fail(ctx, "login failed", authError(err, "Login failed"))
		return false
	}
	if grant.AccessToken == "" || grant.UserID == "" {
		s.fail(ctx, "login failed", pkgerrors.New(pkgerrors.CodeAuth, "Login failed: incomplete response"))
		return false
	}

	tokens := s.api.Tokens()
	if err := tokens.Set(ctx, grant.AccessToken); err != nil {
		s.fail(ctx, "store token", pkgerrors.Wrap(pkgerrors.CodeAuth, err, "Login failed"))
		return false
	}

	var user types.User
	if err := s.api.Do(ctx, http.MethodGet, "/v1/users/"+grant.UserID, nil, transport.Payload("user"), &user); err != nil {
		if clearErr := tokens.Clear(ctx); clearErr != nil {
			s.logg.Error(ctx, "roll back token", clearErr)
		}
		s.fail(ctx, "profile fetch failed", authError(err, "Could not load your profile"))
		return false
	}
	if user.ID == "" {
		user.ID = grant.UserID
	}

	if err := s.persistUser(ctx, user); err != nil {
		s.wipePersisted(ctx)
		s.fail(s.logg.WithUserID(ctx, user.ID), "persist user", pkgerrors.Wrap(pkgerrors.CodeAuth, err, "Login failed: could not save your session"))
		return false
	}

	s.transition(ctx, StateAuthenticated, CauseLogin, Session{Token: grant.AccessToken, User: user})
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "signed in")
	return true
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Fullname string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates the account and chains into Login with the same credentials.
func (s *Store) Register(ctx context.Context, in RegisterInput) bool {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		s.setErr(err)
		return false
	}
	s.setErr(nil)

	var reg types.Registration
	if err := s.api.Do(ctx, http.MethodPost, "/v1/auth/register", in, transport.Info(), &reg); err != nil {
		s.fail(ctx, "registration failed", authError(err, "Registration failed"))
		return false
	}
	return s.Login(ctx, in.Email, in.Password)
}

// Logout tells the backend on a best-effort basis, then always clears locally.
// A 401 from the logout call still ends the session as a logout, not an expiry.
func (s *Store) Logout(ctx context.Context) {
	if s.api.Tokens().Token() != "" {
		err := s.api.Do(ctx, http.MethodPost, "/v1/auth/logout", nil, transport.Discard(), nil, transport.WithoutExpiry())
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "server logout failed; clearing locally")
		}
	}
	s.setErr(nil)
	s.clear(ctx, CauseLogout)
}

// HandleSessionExpired is the transport's session-expired subscriber.
func (s *Store) HandleSessionExpired(ctx context.Context) {
	if s.clear(ctx, CauseExpired) {
		s.setErr(pkgerrors.New(pkgerrors.CodeAuth, expiredMessage))
		s.logg.Warn(ctx, "session expired")
	}
}

// clear drops the session and its persisted copy. It reports whether this call
// performed the authenticated -> anonymous transition.
func (s *Store) clear(ctx context.Context, cause Cause) bool {
	s.wipePersisted(ctx)
	return s.transition(ctx, StateAnonymous, cause, Session{})
}

func (s *Store) wipePersisted(ctx context.Context) {
	if err := s.api.Tokens().Clear(ctx); err != nil {
		s.logg.Error(ctx, "clear persisted token", err)
	}
	if err := s.storage.Delete(ctx, storage.KeyUser); err != nil {
		s.logg.Error(ctx, "clear persisted user", err)
	}
}

func (s *Store) persistUser(ctx context.Context, user types.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, storage.KeyUser, string(raw))
}

// transition swaps the session under the lock and notifies listeners outside it
// when the state or the signed-in user actually changed.
func (s *Store) transition(ctx context.Context, to State, cause Cause, next Session) bool {
	s.mu.Lock()
	from := s.state
	changed := from != to || s.session.User.ID != next.User.ID
	s.state = to
	s.session = next
	s.mu.Unlock()

	if !changed {
		return false
	}

	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	change := Change{From: from, To: to, Cause: cause, Session: next}
	for _, fn := range listeners {
		fn(ctx, change)
	}
	return true
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) fail(ctx context.Context, msg string, err error) {
	s.setErr(err)
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

// authError translates a transport failure into an AuthError whose message is
// safe to show: the backend's detail when present, otherwise fallback.
func authError(err error, fallback string) error {
	if httpErr, ok := pkgerrors.AsHTTP(err); ok && httpErr.Detail != "" {
		return pkgerrors.Wrap(pkgerrors.CodeAuth, err, httpErr.Detail)
	}
	if pkgerrors.IsNetwork(err) {
		return pkgerrors.Wrap(pkgerrors.CodeAuth, err, pkgerrors.MetadataFor(pkgerrors.CodeNetwork).PublicMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeAuth, err, fallback)
}
