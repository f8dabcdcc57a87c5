package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/apikey"
)

const (
	apiKeyHeader    = "X-API-Key"
	accountIDLocal  = "account_id"
	accountIDParam  = "accountId"
	bearerPrefixLen = len("bearer ")
)

// KeyVerifier resolves an API key to the account it belongs to.
type KeyVerifier interface {
	Verify(ctx context.Context, plaintext string) (string, error)
}

// AdminAuth guards operator endpoints with a shared bearer token.
func AdminAuth(token string) fiber.Handler {
	expected := []byte(token)
	return func(c *fiber.Ctx) error {
		presented := bearer(c)
		if len(expected) == 0 || presented == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing admin token")
		}
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}

// APIKeyAuth validates an account API key and requires it to belong to the
// account named in the route.
func APIKeyAuth(keys KeyVerifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(apiKeyHeader)
		if presented == "" {
			presented = bearer(c)
		}
		if presented == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing api key")
		}

		accountID, err := keys.Verify(c.UserContext(), presented)
		if err != nil {
			if !errors.Is(err, apikey.ErrInvalidKey) {
				logger.Error("api key verification failed", slog.Any("error", err))
				return fiber.NewError(http.StatusInternalServerError, "api key verification failure")
			}
			return fiber.NewError(http.StatusUnauthorized, "invalid api key")
		}
		if param := c.Params(accountIDParam); param != "" && param != accountID {
			return fiber.NewError(http.StatusForbidden, "api key does not grant access to this account")
		}

		c.Locals(accountIDLocal, accountID)
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) <= bearerPrefixLen || !strings.EqualFold(authz[:bearerPrefixLen], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[bearerPrefixLen:])
}
