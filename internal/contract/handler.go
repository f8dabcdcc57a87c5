package contract

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes contract endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a contract handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type contractResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Year      int       `json:"year"`
	StartsOn  *string   `json:"starts_on"`
	EndsOn    *string   `json:"ends_on"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toResponse(c Contract, now time.Time) contractResponse {
	return contractResponse{
		ID:        c.ID,
		AccountID: c.AccountID,
		Year:      c.Year,
		StartsOn:  formatDate(c.StartsOn),
		EndsOn:    formatDate(c.EndsOn),
		Active:    c.Covers(now),
		CreatedAt: c.CreatedAt,
	}
}

// Create stores a contract. The body is a flat object of column values;
// numbers are accepted for year.
func (h *Handler) Create(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cols := make(map[string]string, len(body))
	for k, v := range body {
		if v == nil {
			continue
		}
		cols[k] = fmt.Sprint(v)
	}

	created, err := h.service.Create(c.UserContext(), c.Params("accountId"), cols)
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(created, time.Now()))
}

// List returns the account's contracts, flagging those whose term covers today.
func (h *Handler) List(c *fiber.Ctx) error {
	contracts, err := h.service.List(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	now := time.Now()
	out := make([]contractResponse, 0, len(contracts))
	for _, ct := range contracts {
		out = append(out, toResponse(ct, now))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"contracts": out})
}
