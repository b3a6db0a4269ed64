// Package http exposes the TaskKeeper API over HTTP: account signup and
// signin, and the owner-scoped task endpoints.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/atinyakov/TaskKeeper/internal/apperrors"
)

const (
	minUsernameLen = 4
	maxUsernameLen = 20
	minPasswordLen = 8
	maxPasswordLen = 20
)

// AuthService defines the authentication operations required by AuthHandler.
type AuthService interface {
	// SignUp creates a new account.
	SignUp(ctx context.Context, username, password string) error
	// SignIn checks the credentials and returns an access token.
	SignIn(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles HTTP requests for signup and signin.
type AuthHandler struct {
	AuthService AuthService
}

// CredentialsRequest is the JSON payload of both auth endpoints.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse carries the issued access token.
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *CredentialsRequest) validate() error {
	if n := utf8.RuneCountInString(c.Username); n < minUsernameLen || n > maxUsernameLen {
		return apperrors.Validation("username must be between 4 and 20 characters")
	}
	if n := utf8.RuneCountInString(c.Password); n < minPasswordLen || n > maxPasswordLen {
		return apperrors.Validation("password must be between 8 and 20 characters")
	}
	return nil
}

func decodeCredentials(r *http.Request) (CredentialsRequest, error) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperrors.Validation("invalid request body")
	}
	if err := req.validate(); err != nil {
		return req, err
	}
	return req, nil
}

// SignUp handles POST /api/auth/signup and answers 201 with an empty body.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AuthService.SignUp(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// SignIn handles POST /api/auth/signin and returns {"accessToken": "..."}.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.AuthService.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SignInResponse{AccessToken: token})
}
