// Package session gives every storefront visitor a stable anonymous id
// carried in a cookie. Carts are keyed by that id.
//
//	r.Use(session.Middleware(session.FromEnv()))
//	id := session.ID(r.Context())
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"regexp"
	"time"

	"github.com/shashiranjanraj/storefront/config"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		CookieName: "storefront_cart",
		TTL:        72 * time.Hour,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// FromEnv reads CART_COOKIE and CART_TTL. Cookies are Secure in production.
func FromEnv() Options {
	o := DefaultOptions()
	o.CookieName = config.Get("CART_COOKIE", o.CookieName)
	o.TTL = config.CartTTL()
	o.Secure = config.IsProduction()
	return o
}

type ctxKey struct{}

var idPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewID generates a random 32-byte hex session id.
func NewID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithID stores id in ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session id of the request, or "" outside the middleware.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Middleware reuses a well-formed session cookie or issues a new one, and
// refreshes the cookie expiry on every request.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(opts.CookieName); err == nil && idPattern.MatchString(c.Value) {
				id = c.Value
			}
			if id == "" {
				id = NewID()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     opts.Path,
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: opts.SameSite,
			})

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
