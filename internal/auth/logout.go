package auth

import (
	"net/http"

	"github.com/saulo-duarte/chronos-goals/internal/config"
)

// SessionCookie carries the token for browser clients; the Authorization
// header takes precedence.
const SessionCookie = "jwt"

// SessionHandler ends browser sessions. Logout is public so an expired
// token can still clear its cookie.
type SessionHandler struct {
	domain string
}

func NewSessionHandler(domain string) *SessionHandler {
	return &SessionHandler{domain: domain}
}

func (h *SessionHandler) expired() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		Domain:   h.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())
	if tok, err := tokenFromRequest(r); err == nil {
		if claims, err := ValidateJWT(tok); err == nil {
			log = log.WithField("user_id", claims.UserID)
		}
	}

	http.SetCookie(w, h.expired())
	log.Info("Session cleared")
	w.WriteHeader(http.StatusNoContent)
}
