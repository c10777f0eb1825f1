package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/identity"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Cookie names.
const (
	DeviceCookie = "sid"
	TokenCookie  = "token"
)

const deviceCookieMaxAge = 365 * 24 * 60 * 60

// TokenParser resolves a bearer token to an identity.
type TokenParser interface {
	Parse(token string) identity.Identity
}

// Session places the browser device and the shopper identity on the
// request context. Browsers without a valid device cookie get a new one.
// The identity comes from the Authorization header, else the token cookie,
// and falls back to the guest.
func Session(tokens TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := deviceFromRequest(r)
			if deviceID == "" {
				deviceID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookie,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   deviceCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug().Str("device_id", deviceID).Msg("issued device cookie")
			}

			who := tokens.Parse(tokenFromRequest(r))

			ctx := repository.WithDevice(r.Context(), deviceID)
			ctx = identity.WithIdentity(ctx, who)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deviceFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(DeviceCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return header
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
