package device

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/account"
	"github.com/opshub/opshub/internal/kaiterra"
)

// Handler exposes device endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a device handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type kaiterraRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UDID     string `json:"udid"`
}

type registrationResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Vendor    string    `json:"vendor"`
	UDID      string    `json:"udid"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(reg Registration) registrationResponse {
	return registrationResponse{
		ID:        reg.ID,
		AccountID: reg.AccountID,
		Vendor:    reg.Vendor,
		UDID:      reg.UDID,
		CreatedAt: reg.CreatedAt,
	}
}

// RegisterKaiterra handles a Kaiterra device registration. Vendor and
// validation failures answer 422 with the localized message; transport
// failures answer 502.
func (h *Handler) RegisterKaiterra(c *fiber.Ctx) error {
	var req kaiterraRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	reg, err := h.service.RegisterKaiterra(c.UserContext(), c.Params("accountId"), kaiterra.Request{
		Username: req.Username,
		Password: req.Password,
		UDID:     req.UDID,
	})
	if err != nil {
		var kerr *kaiterra.Error
		if errors.As(err, &kerr) {
			status := http.StatusUnprocessableEntity
			if kerr.Kind == kaiterra.KindTransport {
				status = http.StatusBadGateway
			}
			return c.Status(status).JSON(fiber.Map{"error": kerr.Message, "kind": string(kerr.Kind)})
		}
		switch {
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAccountInactive):
			return fiber.NewError(http.StatusForbidden, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"registration": toResponse(reg),
		"payload":      json.RawMessage(reg.Payload),
	})
}

// List returns the account's registrations.
func (h *Handler) List(c *fiber.Ctx) error {
	regs, err := h.service.List(c.UserContext(), c.Params("accountId"))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, toResponse(reg))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"devices": out})
}
