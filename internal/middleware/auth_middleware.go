package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"go-inventory-tims/internal/access"
	"go-inventory-tims/internal/metrics"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"

	localsSession = "session"

	NoticeLoginRequired = "Please login first"
	NoticeForbidden     = "You don't have permission to access that page"
)

// SessionResolver turns a session token into the acting identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*access.Session, error)
}

// LoadSession resolves the session cookie once per request. A bad or revoked
// token is dropped and the request continues anonymously.
func LoadSession(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		sess, err := resolver.ResolveSession(c.UserContext(), token)
		if err != nil {
			zerolog.Ctx(c.UserContext()).Debug().Err(err).Msg("session rejected")
			ClearSessionCookie(c)
			return c.Next()
		}
		c.Locals(localsSession, sess)
		return c.Next()
	}
}

// CurrentSession returns the request's session, or nil when anonymous.
func CurrentSession(c *fiber.Ctx) *access.Session {
	sess, _ := c.Locals(localsSession).(*access.Session)
	return sess
}

// RequirePermission checks the session against the policy of priv.
func RequirePermission(priv access.Privilege) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if d := access.Can(sess, priv); d != access.Allow {
			ev := zerolog.Ctx(c.UserContext()).Info().Str("privilege", string(priv)).Str("decision", d.String())
			if sess != nil {
				ev = ev.Uint("user_id", sess.UserID).Str("role", string(sess.Role))
			}
			ev.Msg("access denied")
			return Deny(c, d)
		}
		return c.Next()
	}
}

// Deny turns a gate decision into the login or dashboard redirect.
func Deny(c *fiber.Ctx, d access.Decision) error {
	metrics.AccessDeniedTotal.WithLabelValues(d.String()).Inc()
	if d == access.DenyUnauthenticated {
		return RedirectWithNotice(c, "/login", NoticeLoginRequired)
	}
	return RedirectWithNotice(c, "/dashboard", NoticeForbidden)
}

// SetSessionCookie stores token for the remaining lifetime of the session.
func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx) {
	c.ClearCookie(SessionCookie)
}
