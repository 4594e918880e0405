// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Where is my invoice?", body["user_query"])
		assert.Equal(t, "a@b.co", body["email"])
		assert.Nil(t, body["session_id"])

		w.Write([]byte(`{"response": "It was emailed.", "session_id": 12, "message_id": 99}`))
	})

	resp, err := c.SendMessage(context.Background(), ChatRequest{UserQuery: "Where is my invoice?", Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, "It was emailed.", resp.Response)
	assert.Equal(t, ID("12"), resp.SessionID)
	assert.Equal(t, ID("99"), resp.MessageID)
}

func TestSendMessage_MissingResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id": 12}`))
	})

	_, err := c.SendMessage(context.Background(), ChatRequest{UserQuery: "hi", Email: "a@b.co"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.Equal(t, MsgInvalidResponse, err.Error())
}

func TestGetConversations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/history/a@b.co", r.URL.Path)
		w.Write([]byte(`{"conversations": [
			{"id": 1, "title": "Invoice", "created_at": "2024-05-01T10:00:00",
			 "messages": [{"id": 5, "user_message": "q1", "bot_response": "a1", "created_at": "2024-05-01T10:00:00"}]}
		]}`))
	})

	convs, err := c.GetConversations(context.Background(), "a@b.co")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, ID("1"), convs[0].ID)
	require.Len(t, convs[0].Messages, 1)
	assert.Equal(t, "a1", convs[0].Messages[0].BotResponse)
	assert.False(t, convs[0].Messages[0].Time().IsZero())
}

func TestGetConversations_InvalidFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"history": []}`))
	})

	_, err := c.GetConversations(context.Background(), "a@b.co")
	require.Error(t, err)
	assert.Equal(t, ErrTypeInvalidResponse, TypeOf(err))
}

func TestDeleteConversation(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.Write([]byte(`{"status": "success"}`))
	})

	require.NoError(t, c.DeleteConversation(context.Background(), "17"))
	assert.Equal(t, "/chat/conversation/17", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestSubmitFeedback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/feedback/99", r.URL.Path)
		var body FeedbackRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 4, body.Rating)
		assert.Equal(t, "faster please", body.Suggestion)
		w.Write([]byte(`{"status": "success"}`))
	})

	err := c.SubmitFeedback(context.Background(), "99", FeedbackRequest{Rating: 4, Suggestion: "faster please"})
	require.NoError(t, err)
}

func TestEmailTranscript(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/email-history/3", r.URL.Path)
		w.Write([]byte(`{"status": "success", "message": "Conversation sent to a@b.co"}`))
	})

	status, err := c.EmailTranscript(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)
}

func TestSearchQA_Query(t *testing.T) {
	helpful := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gst", q.Get("query"))
		assert.Equal(t, "true", q.Get("helpful"))
		assert.Equal(t, "2", q.Get("page"))
		w.Write([]byte(`{"total": 1, "page": 2, "page_size": 10, "total_pages": 1,
			"results": [{"id": 1, "question": "q", "answer": "a", "category": "gst", "is_helpful": true}]}`))
	})

	res, err := c.SearchQA(context.Background(), QASearchParams{Query: "gst", Helpful: &helpful, Page: 2})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "gst", res.Results[0].Category)
}

func TestLoginAndSignup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/login":
			w.Write([]byte(`{"id": 1, "email": "a@b.co", "name": "A", "access_token": "tok"}`))
		case "/user/profile":
			var body SignupRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "India", body.Country)
			w.Write([]byte(`{"id": 2, "email": "n@b.co", "name": "N", "access_token": "tok2"}`))
		}
	})

	user, err := c.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", user.AccessToken)

	user, err = c.Signup(context.Background(), SignupRequest{
		Email: "n@b.co", Name: "N", Password: "Abc123!@", Phone: "9876543210", Country: "India", State: "Goa",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok2", user.AccessToken)
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "email": "a@b.co"}`))
	})

	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"})
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}
