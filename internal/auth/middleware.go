package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/apperr"
)

const (
	// LocalUserID is the Fiber locals key holding the authenticated caller's id.
	LocalUserID = "auth_user_id"
	// LocalUserEmail is the Fiber locals key holding the caller's email.
	LocalUserEmail = "auth_user_email"
	// LocalToken is the Fiber locals key holding the raw session token.
	LocalToken = "auth_token"
)

// RequireSession returns a middleware that authenticates the request from the
// session cookie, falling back to an Authorization bearer token. Failures
// surface as AUTH_REQUIRED through the global error handler.
func RequireSession(v *Verifier, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			return apperr.New(apperr.CodeAuthRequired, "You must be signed in")
		}

		claims, err := v.Verify(token)
		if err != nil {
			return apperr.New(apperr.CodeAuthRequired, "Your session is invalid or expired").WithCause(err)
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// UserID returns the authenticated caller's id, or empty when the request
// did not pass RequireSession.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalUserID).(string); ok {
		return v
	}
	return ""
}

// Token returns the raw session token for provider calls such as sign-out.
func Token(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalToken).(string); ok {
		return v
	}
	return ""
}
