package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AdminTicketsHandler exposes triage endpoints; all routes sit behind the
// admin role guard.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListAll handles GET /admin/tickets.
func (h *AdminTicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.service.ListAllTickets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(tickets))
}

// ProductHistory handles GET /admin/tickets/product/:productName — tickets
// for the product across every user.
func (h *AdminTicketsHandler) ProductHistory(c *fiber.Ctx) error {
	product, err := url.PathUnescape(c.Params("productName"))
	if err != nil {
		product = c.Params("productName")
	}
	tickets, err := h.service.ProductHistory(c.Context(), product, nil)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponses(tickets))
}

// UpdateStatus handles PUT /admin/tickets/:id.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required")
	}

	ticket, err := h.service.UpdateStatus(c.Context(), c.Params("id"), domain.TicketStatus(req.Status), req.ActionTaken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// AddMessage handles POST /admin/tickets/:id/message.
func (h *AdminTicketsHandler) AddMessage(c *fiber.Ctx) error {
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	msg, err := h.service.AppendMessage(c.Context(), c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": dto.MessageResponse{Text: msg.Text, Timestamp: msg.Timestamp},
	})
}
