package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.CanActFor(req.Email) {
		return apperrors.NewForbidden("cannot create tickets for another user")
	}

	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    domain.TicketPriority(req.Priority),
		Product:     req.Product,
		CreatedBy:   req.Email,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// ListByUser handles GET /tickets/:email.
func (h *TicketsHandler) ListByUser(c *fiber.Ctx) error {
	email := emailParam(c)
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.CanActFor(email) {
		return apperrors.NewForbidden("cannot list another user's tickets")
	}

	tickets, err := h.service.ListUserTickets(c.Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(tickets))
}

// GetByID handles GET /ticket/:id.
func (h *TicketsHandler) GetByID(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicketByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.CanActFor(ticket.CreatedBy) {
		return apperrors.NewForbidden("cannot view another user's ticket")
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ProductHistory handles GET /tickets/:email/product/:productName — the
// user-scoped per-product history view.
func (h *TicketsHandler) ProductHistory(c *fiber.Ctx) error {
	email := emailParam(c)
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.CanActFor(email) {
		return apperrors.NewForbidden("cannot view another user's history")
	}

	product, err := url.PathUnescape(c.Params("productName"))
	if err != nil {
		product = c.Params("productName")
	}
	tickets, err := h.service.ProductHistory(c.Context(), product, &email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(tickets))
}
