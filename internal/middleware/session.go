package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stackit-forum/stackit-api/internal/service"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// SessionCookieName is the encrypted session cookie.
const SessionCookieName = "session"

// Locals keys populated by the session middleware. The resolved user is
// memoized in request locals so a request never hits the token store twice.
const (
	LocalsUserToken = "user_token"
	LocalsUserRole  = "user_role"
	LocalsUsername  = "user_name"
)

// SessionProtected resolves the session cookie into an authenticated user
// exactly once per request. Requests without a valid session get a generic
// 401 that never reveals whether the token existed.
func SessionProtected(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(SessionCookieName)
		if cookie == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		user, err := auth.ResolveSession(c.UserContext(), cookie)
		if err != nil {
			c.ClearCookie(SessionCookieName)
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(LocalsUserToken, user.Token)
		c.Locals(LocalsUserRole, user.Role)
		c.Locals(LocalsUsername, user.Username)

		return c.Next()
	}
}

// RequireRole gates a route group behind a session role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals(LocalsUserRole).(string)
		if current != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// UserToken returns the authenticated caller's session token, if any.
func UserToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalsUserToken).(string)
	return token
}

// Username returns the authenticated caller's username, if any.
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(LocalsUsername).(string)
	return name
}
