package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/contract"
	"github.com/opshub/opshub/internal/device"
	"github.com/opshub/opshub/internal/inventory"
	"github.com/opshub/opshub/internal/role"
)

// RegisterAccountRoutes wires endpoints scoped to an API-key authenticated
// account. auth runs per route so it sees the :accountId parameter;
// registrationGuards run after it on the Kaiterra registration route.
func RegisterAccountRoutes(r fiber.Router, auth fiber.Handler, roles *role.Service, locations *inventory.Service, contracts *contract.Handler, devices *device.Handler, registrationGuards ...fiber.Handler) {
	r.Get("/accounts/:accountId/roles", auth, func(c *fiber.Ctx) error {
		list, err := roles.List(c.UserContext(), c.Params("accountId"))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(list))
		for _, rl := range list {
			out = append(out, fiber.Map{"id": rl.ID, "name": rl.Name, "permissions": rl.Permissions})
		}
		return c.JSON(fiber.Map{"roles": out})
	})

	r.Get("/accounts/:accountId/inventory-locations", auth, func(c *fiber.Ctx) error {
		list, err := locations.List(c.UserContext(), c.Params("accountId"))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(list))
		for _, loc := range list {
			out = append(out, fiber.Map{
				"id":       loc.ID,
				"name":     loc.Name,
				"address1": loc.Address1,
				"city":     loc.City,
				"state":    loc.State,
				"country":  loc.Country,
				"zipcode":  loc.Zipcode,
			})
		}
		return c.JSON(fiber.Map{"inventory_locations": out})
	})

	r.Post("/accounts/:accountId/contracts", auth, contracts.Create)
	r.Get("/accounts/:accountId/contracts", auth, contracts.List)

	register := append([]fiber.Handler{auth}, registrationGuards...)
	r.Post("/accounts/:accountId/integrations/kaiterra/devices", append(register, devices.RegisterKaiterra)...)
	r.Get("/accounts/:accountId/devices", auth, devices.List)
}
