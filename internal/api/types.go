// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is a backend identifier. The server emits integer ids, but they are
// carried as strings on the client; numeric ids are sent back as numbers.
type ID string

// UnmarshalJSON accepts a JSON number, string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and the empty id as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the id as a string.
func (id ID) String() string {
	return string(id)
}

// =============================================================================
// AUTH
// =============================================================================

// SignupRequest is the body of POST /user/profile.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	State    string `json:"state"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the user record returned by the auth endpoints. The
// backend flattens the access token into the same object.
type UserResponse struct {
	ID           ID     `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Country      string `json:"country,omitempty"`
	State        string `json:"state,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	LastActive   string `json:"last_active,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenValidation is the reply of POST /user/validate-token.
type TokenValidation struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
	Sub   string `json:"sub,omitempty"`
}

// ChatStats is the reply of GET /user/profile/{email}/chat-stats.
type ChatStats struct {
	TotalChats       int             `json:"total_chats"`
	HelpfulResponses int             `json:"helpful_responses"`
	RecentSessions   []RecentSession `json:"recent_sessions"`
}

// RecentSession summarises one session in ChatStats.
type RecentSession struct {
	ID            ID     `json:"id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time,omitempty"`
	Topic         string `json:"topic,omitempty"`
	MessagesCount int    `json:"messages_count"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the body of POST /chat. SessionID is null for a
// conversation the server has not persisted yet.
type ChatRequest struct {
	UserQuery string `json:"user_query"`
	Email     string `json:"email"`
	SessionID ID     `json:"session_id"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID ID     `json:"session_id"`
	MessageID ID     `json:"message_id"`
}

// chatResponseWire detects a missing "response" field, which is distinct
// from an empty reply.
type chatResponseWire struct {
	Response  *string `json:"response"`
	SessionID ID      `json:"session_id"`
	MessageID ID      `json:"message_id"`
}

// HistoryResponse is the reply of GET /chat/history/{email}.
type HistoryResponse struct {
	Conversations []HistoryConversation `json:"conversations"`
}

// HistoryConversation is one server-side session with its exchanges.
type HistoryConversation struct {
	ID        ID             `json:"id"`
	Title     string         `json:"title"`
	CreatedAt string         `json:"created_at"`
	EmailSent bool           `json:"email_sent,omitempty"`
	Messages  []HistoryEntry `json:"messages"`
}

// HistoryEntry is one question/answer exchange. It expands into a user
// message followed by a system message.
type HistoryEntry struct {
	ID          ID     `json:"id"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	CreatedAt   string `json:"created_at"`
}

// Time parses CreatedAt, accepting RFC 3339 and the backend's naive
// ISO timestamps. It returns the zero time when unparseable.
func (e HistoryEntry) Time() time.Time {
	return ParseTime(e.CreatedAt)
}

// FeedbackRequest is the body of POST /chat/feedback/{id}.
type FeedbackRequest struct {
	Rating     int    `json:"rating"`
	Suggestion string `json:"suggestion"`
}

// StatusResponse is the generic {"status","message"} acknowledgement.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// =============================================================================
// QA
// =============================================================================

// QAStats is the reply of GET /chat/qa/stats.
type QAStats struct {
	TotalQAPairs      int             `json:"total_qa_pairs"`
	HelpfulResponses  int             `json:"helpful_responses"`
	HelpfulPercentage float64         `json:"helpful_percentage"`
	Categories        []CategoryCount `json:"categories"`
	DailyActivity     []DailyActivity `json:"daily_activity"`
}

// CategoryCount is a per-category QA count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DailyActivity is one day of QA activity.
type DailyActivity struct {
	Date                string `json:"date"`
	Count               int    `json:"count"`
	GSTQueries          int    `json:"gst_queries"`
	IncomeTaxQueries    int    `json:"income_tax_queries"`
	CorporateTaxQueries int    `json:"corporate_tax_queries"`
}

// QASearchParams filters GET /chat/qa/search.
type QASearchParams struct {
	Query    string
	Category string
	Helpful  *bool
	Page     int
	PageSize int
}

// QASearchResult is the reply of GET /chat/qa/search.
type QASearchResult struct {
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	Results    []QAPair `json:"results"`
}

// QAPair is one stored question and answer.
type QAPair struct {
	ID        ID     `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category"`
	IsHelpful *bool  `json:"is_helpful"`
	CreatedAt string `json:"created_at"`
	UserEmail string `json:"user_email"`
}

// =============================================================================
// TIME PARSING
// =============================================================================

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a backend timestamp, returning the zero time on failure.
// Timestamps without a zone are read as local time.
func ParseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
