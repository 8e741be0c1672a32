package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const (
	AnonymousCookieName = "anonymous_id"
	anonymousCookieAge  = 60 * 60 * 24 * 365
)

// Credentials are the per-request inputs identity resolution needs.
type Credentials struct {
	AccessToken string
	Cookies     CookieJar
}

// CredentialsFromRequest collects credentials for one HTTP exchange.
func CredentialsFromRequest(w http.ResponseWriter, r *http.Request) Credentials {
	return Credentials{
		AccessToken: AccessToken(r),
		Cookies:     NewHTTPCookieJar(w, r),
	}
}

type Resolver struct {
	sessions      SessionProvider
	secureCookies bool
	logger        *utils.Logger
}

func NewResolver(sessions SessionProvider, secureCookies bool, logger *utils.Logger) *Resolver {
	if sessions == nil {
		sessions = NoSessions{}
	}
	return &Resolver{
		sessions:      sessions,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Resolve returns the authenticated user, else the anonymous browser id from
// the cookie. The zero Identity means the caller is unknown.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) models.Identity {
	if userID := r.userID(ctx, creds.AccessToken); userID != "" {
		return models.Identity{UserID: userID}
	}

	if creds.Cookies != nil {
		if anonID, ok := creds.Cookies.Get(AnonymousCookieName); ok {
			return models.Identity{AnonymousID: anonID}
		}
	}

	return models.Identity{}
}

// ResolveOrMint is Resolve, but an unknown caller gets a fresh anonymous id
// and the cookie that carries it.
func (r *Resolver) ResolveOrMint(ctx context.Context, creds Credentials) models.Identity {
	identity := r.Resolve(ctx, creds)
	if !identity.IsZero() {
		return identity
	}

	anonID := utils.GenerateID()
	if creds.Cookies != nil {
		creds.Cookies.Set(r.anonymousCookie(anonID))
	}

	return models.Identity{AnonymousID: anonID}
}

func (r *Resolver) anonymousCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     AnonymousCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   anonymousCookieAge,
		HttpOnly: true,
		Secure:   r.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

func (r *Resolver) userID(ctx context.Context, token string) string {
	if token == "" {
		return ""
	}

	userID, err := r.sessions.UserID(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			r.logger.Warn("Session lookup failed", "error", err)
		}
		return ""
	}
	return userID
}
