package service

import (
	"context"
	"strings"

	"github.com/kazem-mohamed/socialhub-app/pkg/cache"
	clierrors "github.com/kazem-mohamed/socialhub-app/pkg/errors"
	"github.com/kazem-mohamed/socialhub-app/pkg/ingest"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
)

var (
	tokenStrategies  = ingest.Fields(ingest.ShapeString, ingest.ResponseContainers, "access_token", "accessToken", "token")
	userIDStrategies = ingest.Fields(ingest.ShapeString, ingest.ResponseContainers, "user_id", "userId")
)

// LoginResult is what a successful login yields
type LoginResult struct {
	Token string
	User  cache.Record
}

// AuthService logs in and out
type AuthService struct {
	env *Env
}

// NewAuthService creates an auth service
func NewAuthService(env *Env) *AuthService {
	return &AuthService{env: env}
}

// Login exchanges credentials for a token and the user record
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, clierrors.ValidationError("email", "cannot be empty")
	}
	if password == "" {
		return nil, clierrors.ValidationError("password", "cannot be empty")
	}

	logger.Debug("Attempting login", "email", email)
	body, err := s.env.API.Login(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}

	token, ok := ingest.String(body, tokenStrategies)
	if !ok {
		return nil, clierrors.AuthError("Login response did not include a token")
	}

	res := &LoginResult{Token: token}
	if user, ok := recordFrom(body, "user"); ok && user.ID != "" {
		res.User = user
	} else if id, ok := ingest.String(body, userIDStrategies); ok {
		res.User = cache.Record{ID: id, Fields: map[string]any{"id": id}}
	}
	logger.Debug("Login successful", "user_id", res.User.ID)
	return res, nil
}

func loginError(err error) error {
	cliErr := clierrors.CategorizeError(err)
	msg := clierrors.Describe(err, "Login failed")
	if cliErr.Type == clierrors.ErrorTypeUnauthorized {
		out := clierrors.AuthError(msg)
		out.Suggestion = "Check your email and password."
		out.Cause = err
		return out
	}
	return &clierrors.CLIError{Type: cliErr.Type, Message: msg, Cause: err, Suggestion: cliErr.Suggestion}
}

// Me fetches the authenticated user
func (s *AuthService) Me(ctx context.Context) (cache.Record, error) {
	body, err := s.env.API.Me(ctx)
	if err != nil {
		return cache.Record{}, err
	}
	rec, ok := recordFrom(body, "user")
	if !ok {
		return cache.Record{}, clierrors.NewCLIError(clierrors.ErrorTypeRemote, "Unexpected response for current user", nil)
	}
	return rec, nil
}

// Logout ends the server session and drops every cached list. A failed
// server call is logged, the local logout still happens.
func (s *AuthService) Logout(ctx context.Context) {
	if _, err := s.env.API.Logout(ctx); err != nil {
		logger.Warn("Server logout failed", "error", clierrors.Describe(err, "logout failed"))
	}
	s.env.Cache.Clear()
}
