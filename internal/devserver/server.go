// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/logging"
)

// CannedReply answers every chat message.
const CannedReply = "Thank you for your message. A support agent will respond shortly."

// DefaultAddr is where the dev server listens by default.
const DefaultAddr = "127.0.0.1:8000"

// Options configures a Server.
type Options struct {
	// Secret signs tokens. Random when empty.
	Secret []byte

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration

	// Reply produces the bot answer for a question. Defaults to CannedReply.
	Reply func(question string) string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the in-memory backend.
type Server struct {
	store  *memStore
	secret []byte
	ttl    time.Duration
	reply  func(string) string
	now    func() time.Time
	log    *zap.Logger
}

// New creates a server with no users.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		_, _ = rand.Read(opts.Secret)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Reply == nil {
		opts.Reply = func(string) string { return CannedReply }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		store:  newMemStore(),
		secret: opts.Secret,
		ttl:    opts.TokenTTL,
		reply:  opts.Reply,
		now:    opts.Now,
		log:    logging.Named("devserver"),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/user", func(ur chi.Router) {
		ur.Post("/login", s.handleLogin)
		ur.Post("/profile", s.handleSignup)
		ur.Post("/validate-token", s.handleValidateToken)

		ur.Group(func(pr chi.Router) {
			pr.Use(s.authMiddleware)
			pr.Get("/profile/{email}", s.handleProfile)
			pr.Get("/profile/{email}/chat-stats", s.handleChatStats)
		})
	})

	r.Route("/chat", func(cr chi.Router) {
		cr.Use(s.authMiddleware)
		cr.Post("/", s.handleChat)
		cr.Get("/history/{email}", s.handleHistory)
		cr.Delete("/conversation/{id}", s.handleDeleteConversation)
		cr.Post("/feedback/{id}", s.handleFeedback)
		cr.Post("/email-history/{id}", s.handleEmailHistory)
		cr.Get("/qa/stats", s.handleQAStats)
		cr.Get("/qa/search", s.handleQASearch)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled. ready, if non-nil,
// receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxKey string

const emailKey ctxKey = "email"

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}
		email, err := s.parseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func callerEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}

// =============================================================================
// TOKENS
// =============================================================================

func (s *Server) issueToken(email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeFieldError mimics a request validation failure.
func writeFieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body", field}, "msg": msg}},
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
