// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Advith support backend.
//
// The client covers the authentication endpoints (signup, login, profile,
// token validation) and the chat endpoints (send message, history, delete,
// feedback, transcript email, QA statistics and search). Every call takes a
// context, attaches the bearer token from the injected TokenSource, and
// reports failures as *ClientError values classified by ErrorType:
//
//   - ErrTypeValidation: rejected locally, no request was sent
//   - ErrTypeNetwork: no response was received
//   - ErrTypeServer / ErrTypeUnauthorized: the server answered with an error
//   - ErrTypeInvalidResponse: the server answered with an unusable payload
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: "http://localhost:8000"})
//	client.SetTokenSource(session)
//	reply, err := client.SendMessage(ctx, api.ChatRequest{UserQuery: "hi", Email: email})
package api
