package handlers

import (
	"net/http"
	"time"

	"github.com/dom/videotube-identity/internal/api/middleware"
	"github.com/dom/videotube-identity/internal/token"
)

const RefreshTokenCookie = "refreshToken"

// cookieWriter sets and clears the token cookies.
type cookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (c cookieWriter) set(w http.ResponseWriter, pair *token.Pair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, pair.AccessToken, int(c.accessTTL.Seconds())))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, int(c.refreshTTL.Seconds())))
}

func (c cookieWriter) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c cookieWriter) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
