package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-intake/internal/api/dto"
	"github.com/spec-kit/ticket-intake/internal/observability"
	"github.com/spec-kit/ticket-intake/internal/service"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// IntakeHandler receives inbound customer messages.
type IntakeHandler struct {
	intake  *service.IntakeService
	metrics *observability.Metrics
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intake *service.IntakeService, metrics *observability.Metrics) *IntakeHandler {
	return &IntakeHandler{intake: intake, metrics: metrics}
}

// CreateTicket POST /api/tickets.
func (h *IntakeHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == "" || req.Body == "" || req.CustomerEmail == "" {
		return apperrors.NewValidationError("subject, body, and customerEmail required", nil)
	}

	result, err := h.intake.ProcessInbound(c.UserContext(), service.InboundMessage{
		Subject:        req.Subject,
		Body:           req.Body,
		CustomerEmail:  req.CustomerEmail,
		CustomerDomain: req.CustomerDomain,
	})
	if err != nil {
		return err
	}

	if result.Deduplicated {
		h.metrics.RecordIntakeOutcome("dedup_" + string(result.Method))
		return c.JSON(fiber.Map{"data": dto.DedupResponse{
			Deduplicated: true,
			TicketID:     result.TicketID,
			Method:       string(result.Method),
			Reason:       result.Reason,
		}})
	}

	h.metrics.RecordIntakeOutcome(string(result.Analysis.FAQMatchType))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.IntakeResponse{
		Ticket: ticketResponse(result.Ticket, result.Thread),
		AIAnalysis: dto.AIAnalysisResponse{
			ClassifiedAs:  result.Analysis.ClassifiedAs,
			Severity:      result.Analysis.Severity,
			FAQMatchFound: result.Analysis.FAQMatchFound,
			FAQMatchType:  string(result.Analysis.FAQMatchType),
			FAQTopic:      result.Analysis.FAQTopic,
			FAQSolution:   result.Analysis.FAQSolution,
		},
	}})
}
