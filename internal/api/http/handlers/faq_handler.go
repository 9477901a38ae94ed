package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-intake/internal/api/dto"
	"github.com/spec-kit/ticket-intake/internal/domain"
	"github.com/spec-kit/ticket-intake/internal/service"
	apperrors "github.com/spec-kit/ticket-intake/pkg/util"
)

// FAQHandler manages knowledge base entries.
type FAQHandler struct {
	service *service.FAQService
}

// NewFAQHandler constructs handler.
func NewFAQHandler(faqService *service.FAQService) *FAQHandler {
	return &FAQHandler{service: faqService}
}

// CreateFAQ POST /api/faqs.
func (h *FAQHandler) CreateFAQ(c *fiber.Ctx) error {
	var req dto.CreateFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.CreateEntry(c.UserContext(), req.Topic, req.Content, req.Category)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": faqResponse(entry)})
}

// ListFAQs GET /api/faqs.
func (h *FAQHandler) ListFAQs(c *fiber.Ctx) error {
	entries, err := h.service.ListEntries(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.FAQResponse, 0, len(entries))
	for i := range entries {
		items = append(items, faqResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func faqResponse(entry *domain.KnowledgeBaseEntry) dto.FAQResponse {
	return dto.FAQResponse{
		ID:          entry.ID,
		Topic:       entry.Topic,
		Content:     entry.Content,
		Category:    entry.Category,
		SuccessRate: entry.SuccessRate,
		LastUpdated: entry.LastUpdated,
	}
}
