package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-intake/internal/api/dto"
	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/service"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// TicketsHandler manages ticket browsing and agent actions.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	tickets, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, thread, err := h.service.Get(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, thread)})
}

// UpdateTicket PUT /api/tickets/:ticketId.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("ticketId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, nil)})
}

// AddReply POST /api/tickets/:ticketId/reply.
func (h *TicketsHandler) AddReply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Sender == "" {
		req.Sender = domain.SenderHumanAgent
	}
	msg, err := h.service.AddReply(c.UserContext(), c.Params("ticketId"), req.Sender, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ThreadMessageResponse{
		Sender:    msg.Sender,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}})
}

// SendDirectEmail POST /api/tickets/reply.
func (h *TicketsHandler) SendDirectEmail(c *fiber.Ctx) error {
	var req dto.DirectEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SendDirectEmail(c.UserContext(), req.To, req.Subject, req.Body); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

func ticketResponse(ticket *domain.Ticket, thread []domain.ThreadMessage) dto.TicketResponse {
	resp := dto.TicketResponse{
		TicketID: ticket.TicketID,
		Customer: dto.CustomerResponse{
			Email:  ticket.Customer.Email,
			Domain: ticket.Customer.Domain,
		},
		Subject:      ticket.Content.Subject,
		OriginalBody: ticket.Content.OriginalBody,
		Classification: dto.ClassificationResponse{
			Category:        ticket.Classification.Category,
			ConfidenceScore: ticket.Classification.ConfidenceScore,
			Severity:        ticket.Classification.Severity,
			SLA:             ticket.Classification.SLA,
			Sentiment:       ticket.Classification.Sentiment,
			Flags:           ticket.Classification.Flags,
		},
		Resolution: dto.ResolutionResponse{
			Status:      ticket.Resolution.Status,
			LinkedFAQID: ticket.Resolution.LinkedFAQID,
		},
		Status:      ticket.Status,
		IsEscalated: ticket.IsEscalated,
		Enrichment:  ticket.Enrichment,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
	for _, msg := range thread {
		resp.Thread = append(resp.Thread, dto.ThreadMessageResponse{
			Sender:    msg.Sender,
			Message:   msg.Message,
			Timestamp: msg.Timestamp,
		})
	}
	return resp
}
