// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MinRating and MaxRating bound feedback ratings.
const (
	MinRating = 1
	MaxRating = 5
)

// SendMessage posts a user query. The reply must carry a "response" field;
// a reply without one is reported as ErrInvalidResponse.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.UserQuery) == "" {
		return nil, validationError("Message is required")
	}
	if req.Email == "" {
		return nil, validationError("Email is required")
	}

	var wire chatResponseWire
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/chat",
		body:   req,
		out:    &wire,
		op:     "Failed to send message",
	})
	if err != nil {
		return nil, err
	}
	if wire.Response == nil {
		return nil, ErrInvalidResponse
	}
	return &ChatResponse{
		Response:  *wire.Response,
		SessionID: wire.SessionID,
		MessageID: wire.MessageID,
	}, nil
}

// GetConversations fetches every conversation of email.
func (c *Client) GetConversations(ctx context.Context, email string) ([]HistoryConversation, error) {
	if email == "" {
		return nil, validationError("Email is required")
	}

	var wire struct {
		Conversations *[]HistoryConversation `json:"conversations"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/chat/history/" + url.PathEscape(email),
		out:    &wire,
		op:     "Failed to fetch conversations",
	})
	if err != nil {
		return nil, err
	}
	if wire.Conversations == nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "Invalid response format"}
	}
	return *wire.Conversations, nil
}

// DeleteConversation removes a conversation on the server.
func (c *Client) DeleteConversation(ctx context.Context, id ID) error {
	if id == "" {
		return validationError("Session ID is required")
	}
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/chat/conversation/" + url.PathEscape(id.String()),
		op:     "Failed to delete conversation",
	})
}

// SubmitFeedback rates the bot reply identified by messageID.
func (c *Client) SubmitFeedback(ctx context.Context, messageID ID, req FeedbackRequest) error {
	if messageID == "" {
		return validationError("Chat ID is required")
	}
	if req.Rating < MinRating || req.Rating > MaxRating {
		return validationError("Valid rating (1-5) is required")
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/chat/feedback/" + url.PathEscape(messageID.String()),
		body:   req,
		op:     "Failed to submit feedback",
	})
}

// EmailTranscript asks the server to email the conversation to its owner.
func (c *Client) EmailTranscript(ctx context.Context, id ID) (*StatusResponse, error) {
	if id == "" {
		return nil, validationError("Session ID is required")
	}

	var status StatusResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/chat/email-history/" + url.PathEscape(id.String()),
		out:    &status,
		op:     "Failed to email conversation",
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetQAStats fetches aggregate QA statistics.
func (c *Client) GetQAStats(ctx context.Context) (*QAStats, error) {
	var stats QAStats
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/chat/qa/stats",
		out:    &stats,
		op:     "Failed to fetch QA statistics",
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SearchQA searches stored QA pairs.
func (c *Client) SearchQA(ctx context.Context, p QASearchParams) (*QASearchResult, error) {
	if p.Page < 0 || p.PageSize < 0 || p.PageSize > 100 {
		return nil, validationError("page must be >= 1 and page size between 1 and 100")
	}

	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Helpful != nil {
		q.Set("helpful", strconv.FormatBool(*p.Helpful))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}

	path := "/chat/qa/search"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var result QASearchResult
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		out:    &result,
		op:     "Failed to search QA pairs",
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
