package client

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes client HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a client HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zipcode string `json:"zipcode"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Zipcode   string    `json:"zipcode"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(c Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		City:      c.City,
		State:     c.State,
		Country:   c.Country,
		Zipcode:   c.Zipcode,
		CreatedAt: c.CreatedAt,
	}
}

// Create provisions a client.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	created, err := h.service.Create(c.UserContext(), CreateInput{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		Zipcode: req.Zipcode,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(created))
}

// Get returns a single client.
func (h *Handler) Get(c *fiber.Ctx) error {
	found, err := h.service.Get(c.UserContext(), c.Params("clientId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(found))
}
