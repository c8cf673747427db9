package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/respond"
)

// UserIDKey is the request-local key under which BearerAuth stores the
// authenticated user id.
const UserIDKey = "user_id"

// BearerAuth validates the Authorization bearer token and stores the
// authenticated user id in request locals. Tokens are stateless; no
// directory lookup happens here.
func BearerAuth(creds *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.FromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return respond.Error(c, err)
		}
		userID, err := creds.Validate(token)
		if err != nil {
			return respond.Error(c, err)
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
