package apikey

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes API key administration.
type Handler struct {
	service *Service
}

// NewHandler constructs an API key handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type issueRequest struct {
	Name string `json:"name"`
}

// Issue creates a key and returns the plaintext once.
func (h *Handler) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	issued, err := h.service.Issue(c.UserContext(), c.Params("accountId"), req.Name)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         issued.Key.ID,
		"account_id": issued.Key.AccountID,
		"name":       issued.Key.Name,
		"prefix":     issued.Key.Prefix,
		"key":        issued.Plaintext,
		"created_at": issued.Key.CreatedAt.Format(time.RFC3339),
	})
}

// Revoke disables a key.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	err := h.service.Revoke(c.UserContext(), c.Params("accountId"), c.Params("keyId"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
