package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/me/storecms/pkg/cmsapi"
)

// AuthLoginPath is the backend endpoint exchanging credentials for a token.
const AuthLoginPath = "/api/auth/login"

// tokenPaths are the response members the token is read from, in order.
var tokenPaths = []string{
	"data.token", "data.access_token", "data.accessToken",
	"token", "access_token", "accessToken",
}

// TokenStore keeps the token obtained by Login. *session.Store satisfies it.
type TokenStore interface {
	Set(token string) error
}

// Auth signs operators in.
type Auth struct {
	api    API
	tokens TokenStore
}

// NewAuth creates the auth service storing tokens in tokens.
func NewAuth(d Deps, tokens TokenStore) *Auth {
	return &Auth{api: d.API, tokens: tokens}
}

// Login posts the credentials without a bearer token and stores the
// returned token.
func (s *Auth) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", errors.New("email and password are required")
	}

	var raw json.RawMessage
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Do(ctx, http.MethodPost, AuthLoginPath, nil, body, &raw, cmsapi.Public()); err != nil {
		return "", err
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: login response is not JSON", cmsapi.ErrMalformedResponse)
	}
	if ok := gjson.GetBytes(raw, "success"); ok.Exists() && !ok.Bool() {
		return "", &cmsapi.APIError{Message: gjson.GetBytes(raw, "message").String()}
	}

	var token string
	for _, r := range gjson.GetManyBytes(raw, tokenPaths...) {
		if r.Type == gjson.String && r.Str != "" {
			token = r.Str
			break
		}
	}
	if token == "" {
		return "", fmt.Errorf("%w: login response has no token", cmsapi.ErrMalformedResponse)
	}
	if err := s.tokens.Set(token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}
