// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/logging"
	"github.com/jeranaias/advith-tui/internal/util"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// ErrNoSession is returned when an operation needs a signed-in user.
var ErrNoSession = errors.New("not signed in")

// =============================================================================
// TYPES
// =============================================================================

// Credentials are the tokens that authorize API calls. They are never shown.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is read from the token's exp claim; zero when unknown.
	ExpiresAt time.Time
}

// Expired reports whether the access token is past its expiry.
func (c Credentials) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Profile is the displayable user record.
type Profile struct {
	ID         string `json:"id,omitempty"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Country    string `json:"country,omitempty"`
	State      string `json:"state,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	LastActive string `json:"last_active,omitempty"`
}

// DisplayName returns the name, or the email when no name is set.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// ProfileFromUser copies the displayable fields out of an auth reply.
func ProfileFromUser(u *api.UserResponse) Profile {
	return Profile{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Country:    u.Country,
		State:      u.State,
		CreatedAt:  u.CreatedAt,
		LastActive: u.LastActive,
	}
}

// Authenticator is the part of the API client a Session needs.
type Authenticator interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.UserResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (*api.UserResponse, error)
}

// Options configures a Session.
type Options struct {
	// Sealer encrypts tokens at rest. Nil stores them in plain text.
	Sealer *Sealer

	// Now is the clock used for expiry checks.
	Now func() time.Time
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the process-wide signed-in state. The zero value is not usable;
// create one with NewSession.
type Session struct {
	store  Store
	client Authenticator
	sealer *Sealer
	now    func() time.Time
	log    *zap.Logger

	mu      sync.RWMutex
	creds   Credentials
	profile Profile
	active  bool
}

// NewSession creates a signed-out session backed by store.
func NewSession(store Store, client Authenticator, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		store:  store,
		client: client,
		sealer: opts.Sealer,
		now:    opts.Now,
		log:    logging.Named("auth"),
	}
}

// Load rehydrates the session from the store. A missing or expired session
// leaves the user signed out and is not an error. An expired or unreadable
// session is removed from the store.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.store.Get(ctx, KeyToken)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err = s.open(token)
	if err != nil {
		s.log.Warn("discarding unreadable session", zap.Error(err))
		return s.store.Replace(ctx, nil, SessionKeys...)
	}

	var profile Profile
	raw, err := s.store.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			s.log.Warn("discarding corrupt user record", zap.Error(err))
			return s.store.Replace(ctx, nil, SessionKeys...)
		}
	}

	refresh, err := s.store.Get(ctx, KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	if refresh, err = s.open(refresh); err != nil {
		refresh = ""
	}

	creds := Credentials{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    TokenExpiry(token),
	}
	if creds.Expired(s.now()) {
		s.log.Info("stored session expired", zap.Time("expires_at", creds.ExpiresAt))
		return s.store.Replace(ctx, nil, SessionKeys...)
	}

	s.mu.Lock()
	s.creds = creds
	s.profile = profile
	s.active = true
	s.mu.Unlock()

	s.log.Info("session restored", zap.String("email", profile.Email))
	return nil
}

// Login signs in with email and password. On failure the stored session is
// left untouched.
func (s *Session) Login(ctx context.Context, form validate.Login) (Profile, error) {
	form.Email = util.Normalize(form.Email)
	if errs := form.Validate(); !errs.Valid() {
		return Profile{}, errs
	}

	user, err := s.client.Login(ctx, api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		s.log.Info("login failed", zap.String("email", form.Email), zap.Error(err))
		return Profile{}, err
	}
	return s.establish(ctx, user)
}

// Signup registers a new account and signs in. On failure the stored session
// is left untouched.
func (s *Session) Signup(ctx context.Context, form validate.Signup) (Profile, error) {
	form.Email = util.Normalize(form.Email)
	form.Name = util.Normalize(form.Name)
	if errs := form.Validate(); !errs.Valid() {
		return Profile{}, errs
	}

	user, err := s.client.Signup(ctx, api.SignupRequest{
		Email:    form.Email,
		Name:     form.Name,
		Password: form.Password,
		Phone:    form.Phone,
		Country:  form.Country,
		State:    form.State,
	})
	if err != nil {
		s.log.Info("signup failed", zap.String("email", form.Email), zap.Error(err))
		return Profile{}, err
	}
	return s.establish(ctx, user)
}

func (s *Session) establish(ctx context.Context, user *api.UserResponse) (Profile, error) {
	profile := ProfileFromUser(user)
	if profile.Email == "" {
		return Profile{}, api.ErrInvalidResponse
	}
	creds := Credentials{
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
		ExpiresAt:    TokenExpiry(user.AccessToken),
	}

	if err := s.persist(ctx, creds, profile); err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	s.creds = creds
	s.profile = profile
	s.active = true
	s.mu.Unlock()

	s.log.Info("signed in", zap.String("email", profile.Email))
	return profile, nil
}

func (s *Session) persist(ctx context.Context, creds Credentials, profile Profile) error {
	user, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	token, err := s.seal(creds.AccessToken)
	if err != nil {
		return err
	}
	values := map[string]string{KeyToken: token, KeyUser: string(user)}

	var del []string
	if creds.RefreshToken != "" {
		refresh, err := s.seal(creds.RefreshToken)
		if err != nil {
			return err
		}
		values[KeyRefreshToken] = refresh
	} else {
		del = append(del, KeyRefreshToken)
	}

	if err := s.store.Replace(ctx, values, del...); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout clears the stored session and then the in-memory one. If the
// store cannot be cleared the user stays signed in.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Replace(ctx, nil, SessionKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	email := s.profile.Email
	s.creds = Credentials{}
	s.profile = Profile{}
	s.active = false
	s.mu.Unlock()

	s.log.Info("signed out", zap.String("email", email))
	return nil
}

// AccessToken returns the bearer token, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Credentials returns a copy of the current credentials.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Profile returns the signed-in profile and whether a user is signed in.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.active
}

// Email returns the signed-in email, or "".
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Email
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && s.profile.Email != ""
}

func (s *Session) seal(v string) (string, error) {
	if s.sealer == nil || v == "" {
		return v, nil
	}
	return s.sealer.Seal(v)
}

func (s *Session) open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	if s.sealer == nil {
		return "", ErrUnsealFailed
	}
	return s.sealer.Open(v)
}

// TokenExpiry reads the exp claim of a JWT without verifying it. It returns
// the zero time for opaque tokens or tokens without exp.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
