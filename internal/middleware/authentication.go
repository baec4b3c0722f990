package middleware

import (
	"context"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// NewAuthenticationMiddleware requires an "Authorization: Bearer <jwt>" header
// and stores the resulting principal in the user context.
func NewAuthenticationMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))

		scheme, token, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return unauthorized(c, "market.authentication.missing_token", "Bearer token required")
		}

		principal, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return unauthorized(c, "market.authentication.invalid_token", "Invalid or expired token")
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		c.SetUserContext(auth.WithPrincipal(userCtx, principal))
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	err := httperror.Unauthorized(code, message, nil)

	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
