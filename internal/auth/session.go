package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
)

var ErrInvalidSession = errors.New("invalid session")

// SessionProvider maps an access token to an authenticated user id.
type SessionProvider interface {
	UserID(ctx context.Context, accessToken string) (string, error)
}

// NoSessions is used when no identity provider is configured; every caller is
// anonymous.
type NoSessions struct{}

func (NoSessions) UserID(context.Context, string) (string, error) {
	return "", nil
}

// SupabaseSessions validates access tokens against the Supabase auth API.
type SupabaseSessions struct {
	client gotrue.Client
}

func NewSupabaseSessions(baseURL, anonKey string) *SupabaseSessions {
	client := gotrue.New("", anonKey).
		WithCustomAuthURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		WithClient(http.Client{Timeout: 10 * time.Second})

	return &SupabaseSessions{client: client}
}

type userResult struct {
	user *types.UserResponse
	err  error
}

func (s *SupabaseSessions) UserID(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", nil
	}

	// GetUser takes no context; abandon it when the request goes away.
	done := make(chan userResult, 1)
	go func() {
		user, err := s.client.WithToken(accessToken).GetUser()
		done <- userResult{user: user, err: err}
	}()

	var res userResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if status := responseStatus(res.err); status == http.StatusUnauthorized || status == http.StatusForbidden {
			return "", ErrInvalidSession
		}
		return "", fmt.Errorf("failed to fetch user: %w", res.err)
	}
	if res.user == nil || res.user.ID == uuid.Nil {
		return "", ErrInvalidSession
	}

	return res.user.ID.String(), nil
}

// responseStatus recovers the HTTP status from an auth-go error, which
// reports non-200 responses as "response status code <n>: <body>".
func responseStatus(err error) int {
	_, rest, ok := strings.Cut(err.Error(), "response status code ")
	if !ok {
		return 0
	}
	code, _, _ := strings.Cut(rest, ":")
	status, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0
	}
	return status
}

const accessTokenCookie = "sb-access-token"

// AccessToken reads a bearer token from the Authorization header, falling
// back to the Supabase session cookie.
func AccessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
