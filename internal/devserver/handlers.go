// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/util"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// =============================================================================
// USER
// =============================================================================

func (s *Server) userResponse(u *user, token string) api.UserResponse {
	return api.UserResponse{
		ID:          api.ID(strconv.Itoa(u.ID)),
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Country:     u.Country,
		State:       u.State,
		CreatedAt:   formatTime(u.CreatedAt),
		LastActive:  formatTime(u.LastActive),
		AccessToken: token,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validate.Email(req.Email); msg != "" {
		writeFieldError(w, "email", msg)
		return
	}
	if msg := validate.Password(req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, "Invalid password format: "+strings.TrimSpace(msg))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating user profile")
		return
	}

	s.store.mu.Lock()
	key := userKey(req.Email)
	if _, exists := s.store.users[key]; exists {
		s.store.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	now := s.now()
	u := &user{
		ID:           s.store.id(),
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Phone:        req.Phone,
		Country:      req.Country,
		State:        req.State,
		CreatedAt:    now,
		LastActive:   now,
	}
	s.store.users[key] = u
	s.store.mu.Unlock()

	token, err := s.issueToken(u.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating access token")
		return
	}
	s.log.Info("user registered", zap.String("email", u.Email))
	writeJSON(w, http.StatusOK, s.userResponse(u, token))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.mu.Lock()
	u, ok := s.store.users[userKey(req.Email)]
	if ok && bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) == nil {
		u.LastActive = s.now()
	} else {
		ok = false
	}
	var resp api.UserResponse
	if ok {
		resp = s.userResponse(u, "")
	}
	s.store.mu.Unlock()

	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.issueToken(resp.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating access token")
		return
	}
	resp.AccessToken = token
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email, err := s.parseToken(req.Token)
	if err != nil {
		writeJSON(w, http.StatusOK, api.TokenValidation{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, api.TokenValidation{Valid: true, Email: email, Sub: email})
}

func (s *Server) ownProfile(w http.ResponseWriter, r *http.Request) (*user, bool) {
	email := chi.URLParam(r, "email")
	if userKey(email) != userKey(callerEmail(r)) {
		writeError(w, http.StatusForbidden, "Not authorized to access this profile")
		return nil, false
	}
	u, ok := s.store.users[userKey(email)]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return u, true
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u, ok := s.ownProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.userResponse(u, ""))
}

func (s *Server) handleChatStats(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	u, ok := s.ownProfile(w, r)
	if !ok {
		return
	}

	stats := api.ChatStats{RecentSessions: []api.RecentSession{}}
	for i, cs := range s.store.sessionsOf(u.Email) {
		pairs := s.store.pairsOf(cs.ID)
		stats.TotalChats++
		for _, p := range pairs {
			if p.Helpful != nil && *p.Helpful {
				stats.HelpfulResponses++
			}
		}
		if i < 5 {
			stats.RecentSessions = append(stats.RecentSessions, api.RecentSession{
				ID:            api.ID(strconv.Itoa(cs.ID)),
				StartTime:     formatTime(cs.CreatedAt),
				EndTime:       formatTime(cs.EndedAt),
				Topic:         cs.Title,
				MessagesCount: len(pairs) * 2,
			})
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// CHAT
// =============================================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" {
		writeFieldError(w, "user_query", "Message is required")
		return
	}
	if userKey(req.Email) != userKey(callerEmail(r)) {
		writeError(w, http.StatusForbidden, "Not authorized for this user")
		return
	}

	answer := s.reply(req.UserQuery)
	now := s.now()

	s.store.mu.Lock()
	var cs *chatSession
	if req.SessionID != "" {
		id, err := strconv.Atoi(req.SessionID.String())
		if err == nil {
			cs = s.store.sessions[id]
		}
		if cs == nil || userKey(cs.Email) != userKey(req.Email) {
			s.store.mu.Unlock()
			writeError(w, http.StatusNotFound, "Chat session not found")
			return
		}
	} else {
		cs = &chatSession{
			ID:        s.store.id(),
			Email:     req.Email,
			Title:     util.TruncateWidth(util.FirstLine(req.UserQuery), 50),
			CreatedAt: now,
		}
		s.store.sessions[cs.ID] = cs
	}
	cs.EndedAt = now

	qa := &qaPair{
		ID:        s.store.id(),
		SessionID: cs.ID,
		Email:     req.Email,
		Question:  req.UserQuery,
		Answer:    answer,
		Category:  Categorize(req.UserQuery),
		CreatedAt: now,
	}
	s.store.qa[qa.ID] = qa
	s.store.mu.Unlock()

	writeJSON(w, http.StatusOK, api.ChatResponse{
		Response:  answer,
		SessionID: api.ID(strconv.Itoa(cs.ID)),
		MessageID: api.ID(strconv.Itoa(qa.ID)),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if userKey(email) != userKey(callerEmail(r)) {
		writeError(w, http.StatusForbidden, "Not authorized to access this history")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	convs := make([]api.HistoryConversation, 0)
	for _, cs := range s.store.sessionsOf(email) {
		hc := api.HistoryConversation{
			ID:        api.ID(strconv.Itoa(cs.ID)),
			Title:     cs.Title,
			CreatedAt: formatTime(cs.CreatedAt),
			EmailSent: cs.EmailSent,
			Messages:  []api.HistoryEntry{},
		}
		for _, p := range s.store.pairsOf(cs.ID) {
			hc.Messages = append(hc.Messages, api.HistoryEntry{
				ID:          api.ID(strconv.Itoa(p.ID)),
				UserMessage: p.Question,
				BotResponse: p.Answer,
				CreatedAt:   formatTime(p.CreatedAt),
			})
		}
		convs = append(convs, hc)
	}
	writeJSON(w, http.StatusOK, api.HistoryResponse{Conversations: convs})
}

// ownedSession looks up the {id} session of the caller. The store lock must
// be held.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*chatSession, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	cs := s.store.sessions[id]
	if err != nil || cs == nil || userKey(cs.Email) != userKey(callerEmail(r)) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return nil, false
	}
	return cs, true
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	cs, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	for _, p := range s.store.pairsOf(cs.ID) {
		delete(s.store.qa, p.ID)
	}
	delete(s.store.sessions, cs.ID)
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "success", Message: "Conversation deleted successfully"})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req api.FeedbackRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < api.MinRating || req.Rating > api.MaxRating {
		writeFieldError(w, "rating", "Rating must be between 1 and 5")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	p := s.store.qa[id]
	if err != nil || p == nil || userKey(p.Email) != userKey(callerEmail(r)) {
		writeError(w, http.StatusNotFound, "Q&A pair not found")
		return
	}
	helpful := req.Rating >= 4
	p.Rating = req.Rating
	p.Helpful = &helpful
	p.Feedback = req.Suggestion
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "success", Message: "Feedback submitted successfully"})
}

func (s *Server) handleEmailHistory(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	cs, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	cs.EmailSent = true
	writeJSON(w, http.StatusOK, api.StatusResponse{
		Status:  "success",
		Message: "Chat history sent to " + cs.Email,
	})
}

// =============================================================================
// QA
// =============================================================================

func (s *Server) handleQAStats(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stats := api.QAStats{Categories: []api.CategoryCount{}, DailyActivity: []api.DailyActivity{}}
	byCategory := map[string]int{}
	byDay := map[string]*api.DailyActivity{}
	var days []string

	for _, p := range s.store.allPairs() {
		stats.TotalQAPairs++
		if p.Helpful != nil && *p.Helpful {
			stats.HelpfulResponses++
		}
		byCategory[p.Category]++

		day := p.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &api.DailyActivity{Date: day}
			byDay[day] = d
			days = append(days, day)
		}
		d.Count++
		switch p.Category {
		case CategoryGST:
			d.GSTQueries++
		case CategoryIncomeTax:
			d.IncomeTaxQueries++
		case CategoryCorporateTax:
			d.CorporateTaxQueries++
		}
	}
	if stats.TotalQAPairs > 0 {
		pct := float64(stats.HelpfulResponses) / float64(stats.TotalQAPairs) * 100
		stats.HelpfulPercentage = math.Round(pct*100) / 100
	}
	for _, c := range []string{CategoryGST, CategoryIncomeTax, CategoryCorporateTax,
		CategoryTaxPlanning, CategoryCompliance, CategoryAccounting, CategoryGeneral} {
		if n := byCategory[c]; n > 0 {
			stats.Categories = append(stats.Categories, api.CategoryCount{Category: c, Count: n})
		}
	}
	for _, day := range days {
		stats.DailyActivity = append(stats.DailyActivity, *byDay[day])
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleQASearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := 1, 10
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeFieldError(w, "page", "page must be >= 1")
			return
		}
		page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeFieldError(w, "page_size", "page_size must be between 1 and 100")
			return
		}
		pageSize = n
	}
	query := strings.ToLower(q.Get("query"))
	category := q.Get("category")
	var helpful *bool
	if v := q.Get("helpful"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeFieldError(w, "helpful", "helpful must be true or false")
			return
		}
		helpful = &b
	}

	s.store.mu.Lock()
	var matched []*qaPair
	for _, p := range s.store.allPairs() {
		if query != "" && !strings.Contains(strings.ToLower(p.Question), query) &&
			!strings.Contains(strings.ToLower(p.Answer), query) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if helpful != nil && (p.Helpful == nil || *p.Helpful != *helpful) {
			continue
		}
		matched = append(matched, p)
	}

	result := api.QASearchResult{
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
		Results:  []api.QAPair{},
	}
	result.TotalPages = (result.Total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	for i := start; i < len(matched) && i < start+pageSize; i++ {
		p := matched[i]
		result.Results = append(result.Results, api.QAPair{
			ID:        api.ID(strconv.Itoa(p.ID)),
			Question:  p.Question,
			Answer:    p.Answer,
			Category:  p.Category,
			IsHelpful: p.Helpful,
			CreatedAt: formatTime(p.CreatedAt),
			UserEmail: p.Email,
		})
	}
	s.store.mu.Unlock()

	writeJSON(w, http.StatusOK, result)
}

// Users returns the number of registered users.
func (s *Server) Users() int {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return len(s.store.users)
}

// Seed registers a user directly, for demos and tests.
func (s *Server) Seed(email, name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	now := s.now()
	s.store.users[userKey(email)] = &user{
		ID: s.store.id(), Email: email, Name: name, PasswordHash: hash,
		Country: "India", State: "Karnataka", Phone: "+91 9876543210",
		CreatedAt: now, LastActive: now,
	}
	return nil
}
