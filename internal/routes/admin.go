package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/account"
	"github.com/opshub/opshub/internal/apikey"
	"github.com/opshub/opshub/internal/client"
)

// RegisterAdminRoutes wires operator endpoints for clients, accounts and keys.
func RegisterAdminRoutes(r fiber.Router, clients *client.Handler, accounts *account.Handler, keys *apikey.Handler, accountSvc *account.Service) {
	r.Post("/clients", clients.Create)
	r.Get("/clients/:clientId", clients.Get)

	r.Post("/accounts", accounts.Create)
	r.Get("/accounts", accounts.Collection)
	r.Get("/accounts/:accountId", accounts.Get)
	r.Patch("/accounts/:accountId/status", accounts.UpdateStatus)
	r.Get("/accounts/:accountId/changelog", accounts.History)

	known := requireAccount(accountSvc)
	r.Post("/accounts/:accountId/api-keys", known, keys.Issue)
	r.Delete("/accounts/:accountId/api-keys/:keyId", known, keys.Revoke)
}

// requireAccount answers 404 for routes naming an unknown account.
func requireAccount(accounts *account.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := accounts.Get(c.UserContext(), c.Params("accountId")); err != nil {
			if errors.Is(err, account.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Next()
	}
}
