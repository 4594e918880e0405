// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Signup registers a new user. The reply carries the access token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*UserResponse, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, validationError("Name is required")
	case strings.TrimSpace(req.Phone) == "":
		return nil, validationError("Phone number is required")
	case strings.TrimSpace(req.Email) == "":
		return nil, validationError("Email is required")
	case req.Password == "":
		return nil, validationError("Password is required")
	}

	var user UserResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user/profile",
		body:   req,
		out:    &user,
		op:     "Registration failed",
	})
	if err != nil {
		return nil, err
	}
	if user.AccessToken == "" {
		return nil, ErrInvalidResponse
	}
	return &user, nil
}

// Login authenticates an existing user.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*UserResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, validationError("Email and password are required")
	}

	var user UserResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user/login",
		body:   req,
		out:    &user,
		op:     "Login failed",
	})
	if err != nil {
		return nil, err
	}
	if user.AccessToken == "" {
		return nil, ErrInvalidResponse
	}
	return &user, nil
}

// GetProfile fetches the profile for email.
func (c *Client) GetProfile(ctx context.Context, email string) (*UserResponse, error) {
	if email == "" {
		return nil, validationError("Email is required")
	}

	var user UserResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/profile/" + url.PathEscape(email),
		out:    &user,
		op:     "Failed to fetch profile",
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetChatStats fetches per-user chat statistics.
func (c *Client) GetChatStats(ctx context.Context, email string) (*ChatStats, error) {
	if email == "" {
		return nil, validationError("Email is required")
	}

	var stats ChatStats
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/user/profile/" + url.PathEscape(email) + "/chat-stats",
		out:    &stats,
		op:     "Failed to fetch chat statistics",
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ValidateToken asks the server whether token is still accepted.
func (c *Client) ValidateToken(ctx context.Context, token string) (*TokenValidation, error) {
	if token == "" {
		return nil, validationError("Token is required")
	}

	var v TokenValidation
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/user/validate-token",
		body:   map[string]string{"token": token},
		out:    &v,
		op:     "Token validation failed",
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}
