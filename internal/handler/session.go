package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "session_id"

// ensureSession returns the caller's session id, minting a cookie on first
// contact. The id is an opaque handle; it carries no claims and needs no
// signature.
func ensureSession(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
