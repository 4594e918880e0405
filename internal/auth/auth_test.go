// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/validate"
)

type fakeAuth struct {
	user  *api.UserResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, _ api.LoginRequest) (*api.UserResponse, error) {
	f.calls++
	return f.user, f.err
}

func (f *fakeAuth) Signup(_ context.Context, _ api.SignupRequest) (*api.UserResponse, error) {
	f.calls++
	return f.user, f.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@b.co",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewFileSealer(filepath.Join(t.TempDir(), "session.key"), 1000)
	require.NoError(t, err)
	return s
}

var goodLogin = validate.Login{Email: "a@b.co", Password: "Abc123!@"}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestSQLiteStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "t1", KeyUser: "{}"}))
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "t2"}))

	v, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "t2", v)

	require.NoError(t, store.Replace(ctx, nil, SessionKeys...))
	for _, k := range SessionKeys {
		_, err := store.Get(ctx, k)
		assert.ErrorIs(t, err, ErrKeyNotFound, k)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "persisted"}))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	v, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

// =============================================================================
// SEALER TESTS
// =============================================================================

func TestSealer_RoundTrip(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal("secret-token")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "secret-token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", plain)

	again, err := s.Seal("secret-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestSealer_WrongKeyFails(t *testing.T) {
	sealed, err := testSealer(t).Seal("x")
	require.NoError(t, err)

	_, err = testSealer(t).Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealFailed)
}

func TestFileKeyStore_StableAcrossLoads(t *testing.T) {
	ks := NewFileKeyStore(filepath.Join(t.TempDir(), "k"))
	salt1, secret1, err := ks.LoadOrCreate()
	require.NoError(t, err)
	salt2, secret2, err := ks.LoadOrCreate()
	require.NoError(t, err)
	assert.Equal(t, salt1, salt2)
	assert.Equal(t, secret1, secret2)
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_LoginPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sealer := testSealer(t)
	token := signedToken(t, time.Now().Add(time.Hour))

	client := &fakeAuth{user: &api.UserResponse{
		ID: "7", Email: "a@b.co", Name: "Asha", AccessToken: token, RefreshToken: "r1",
	}}
	s := NewSession(store, client, Options{Sealer: sealer})

	profile, err := s.Login(ctx, goodLogin)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, token, s.AccessToken())
	assert.False(t, s.Credentials().ExpiresAt.IsZero())

	raw, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, IsSealed(raw), "token stored sealed")

	// The profile never carries credentials.
	user, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.NotContains(t, user, token)

	restored := NewSession(store, client, Options{Sealer: sealer})
	require.NoError(t, restored.Load(ctx))
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, token, restored.AccessToken())
	assert.Equal(t, "r1", restored.Credentials().RefreshToken)
	assert.Equal(t, "a@b.co", restored.Email())
}

func TestSession_LoginFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "old", KeyUser: `{"email":"old@b.co"}`}))

	client := &fakeAuth{err: errors.New("Login failed (status 401)")}
	s := NewSession(store, client, Options{})

	_, err := s.Login(ctx, goodLogin)
	require.Error(t, err)

	v, _ := store.Get(ctx, KeyToken)
	assert.Equal(t, "old", v)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_InvalidFormNeverCallsServer(t *testing.T) {
	client := &fakeAuth{}
	s := NewSession(NewMemoryStore(), client, Options{})

	_, err := s.Login(context.Background(), validate.Login{Email: "nope", Password: "x"})
	var fe validate.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Please enter a valid email address", fe.Get(validate.FieldEmail))
	assert.Zero(t, client.calls)

	_, err = s.Signup(context.Background(), validate.Signup{Email: "a@b.co"})
	require.Error(t, err)
	assert.Zero(t, client.calls)
}

func TestSession_Signup(t *testing.T) {
	client := &fakeAuth{user: &api.UserResponse{Email: "new@b.co", Name: "New", AccessToken: "opaque"}}
	s := NewSession(NewMemoryStore(), client, Options{})

	profile, err := s.Signup(context.Background(), validate.Signup{
		Name: "New", Email: "new@b.co", Phone: "9876543210",
		Country: "India", State: "Karnataka",
		Password: "Abc123!@", Confirm: "Abc123!@",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@b.co", profile.Email)
	assert.True(t, s.Credentials().ExpiresAt.IsZero(), "opaque token has no expiry")
}

func TestSession_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	client := &fakeAuth{user: &api.UserResponse{Email: "a@b.co", AccessToken: "t", RefreshToken: "r"}}
	s := NewSession(store, client, Options{})

	_, err := s.Login(ctx, goodLogin)
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	for _, k := range SessionKeys {
		_, err := store.Get(ctx, k)
		assert.ErrorIs(t, err, ErrKeyNotFound, k)
	}
}

// brokenStore fails every Replace after the first n.
type brokenStore struct {
	*MemoryStore
	allowed int
}

func (b *brokenStore) Replace(ctx context.Context, set map[string]string, del ...string) error {
	if b.allowed <= 0 {
		return errors.New("disk full")
	}
	b.allowed--
	return b.MemoryStore.Replace(ctx, set, del...)
}

func TestSQLiteStore_ReplaceDeletesAndWrites(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "t1", KeyRefreshToken: "r1"}))

	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: "t2"}, KeyRefreshToken))

	v, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "t2", v)
	_, err = store.Get(ctx, KeyRefreshToken)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSession_FailedSaveKeepsStoredRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, store.MemoryStore.Replace(ctx, map[string]string{KeyToken: "old", KeyRefreshToken: "old-r"}))

	client := &fakeAuth{user: &api.UserResponse{Email: "a@b.co", AccessToken: "t"}}
	s := NewSession(store, client, Options{})

	_, err := s.Login(ctx, goodLogin)
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())

	v, err := store.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "old-r", v)
}

func TestSession_FailedLogoutStaysSignedIn(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{MemoryStore: NewMemoryStore(), allowed: 1}
	client := &fakeAuth{user: &api.UserResponse{Email: "a@b.co", AccessToken: "t"}}
	s := NewSession(store, client, Options{})

	_, err := s.Login(ctx, goodLogin)
	require.NoError(t, err)

	require.Error(t, s.Logout(ctx))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "t", s.AccessToken())

	v, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "t", v)
}

func TestSession_LoadExpiredDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	expired := signedToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: expired, KeyUser: `{"email":"a@b.co"}`}))

	s := NewSession(store, &fakeAuth{}, Options{})
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.IsAuthenticated())

	_, err := store.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSession_LoadSealedWithoutSealerDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sealed, err := testSealer(t).Seal("t")
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, map[string]string{KeyToken: sealed}))

	s := NewSession(store, &fakeAuth{}, Options{})
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.IsAuthenticated())
}

func TestSession_LoadEmptyStore(t *testing.T) {
	s := NewSession(NewMemoryStore(), &fakeAuth{}, Options{})
	require.NoError(t, s.Load(context.Background()))
	assert.False(t, s.IsAuthenticated())
	_, ok := s.Profile()
	assert.False(t, ok)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	assert.True(t, TokenExpiry(signedToken(t, exp)).Equal(exp))
	assert.True(t, TokenExpiry("not-a-jwt").IsZero())
	assert.True(t, TokenExpiry(strings.Repeat("a", 10)).IsZero())
}

func TestSession_ImplementsTokenSource(t *testing.T) {
	var _ api.TokenSource = (*Session)(nil)
}
