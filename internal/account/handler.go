package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/client"
)

// Handler exposes account endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		ClientID:  a.ClientID,
		Name:      a.Name,
		Status:    string(a.Status),
		Timezone:  a.Timezone,
		CreatedAt: a.CreatedAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Create provisions an account for a client.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Create(c.UserContext(), CreateInput{ClientID: req.ClientID, Name: req.Name, Timezone: req.Timezone})
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(a))
}

// Get returns one account.
func (h *Handler) Get(c *fiber.Ctx) error {
	a, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(a))
}

// Collection lists accounts as picker entries.
func (h *Handler) Collection(c *fiber.Ctx) error {
	items, err := h.service.Collection(c.UserContext())
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		out = append(out, fiber.Map{"id": item.ID, "name": item.Label})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"accounts": out})
}

// UpdateStatus changes an account's status.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	a, err := h.service.UpdateStatus(c.UserContext(), c.Params("accountId"), status)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(a))
}

// History returns the account's changelog entries.
func (h *Handler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, fiber.Map{
			"id":         e.ID,
			"action":     e.Action,
			"changes":    e.Changes,
			"created_at": e.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": out})
}
