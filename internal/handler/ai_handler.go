package handler

import (
	"errors"

	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// AIHandler exposes the AI flows.
type AIHandler struct {
	flows  *service.FlowService
	logger *zap.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(flows *service.FlowService, logger *zap.Logger) *AIHandler {
	return &AIHandler{flows: flows, logger: logger.Named("http")}
}

// Register sets up public AI routes.
func (h *AIHandler) Register(router fiber.Router) {
	ai := router.Group("/ai")
	ai.Get("/flows", h.ListFlows)
	ai.Post("/recommendations", h.Recommend)
	ai.Post("/faq", h.FAQ)
}

// RegisterAdmin sets up staff-only AI routes.
func (h *AIHandler) RegisterAdmin(admin fiber.Router) {
	admin.Post("/ai/mission-description", h.DescribeMission)
}

// ListFlows returns the available flow names.
func (h *AIHandler) ListFlows(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"flows": h.flows.ListFlows()})
}

// Recommend suggests missions for a volunteer.
func (h *AIHandler) Recommend(c fiber.Ctx) error {
	var req service.RecommendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	out, err := h.flows.Recommend(c.Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(out)
}

// FAQ answers a question.
func (h *AIHandler) FAQ(c fiber.Ctx) error {
	var req service.FAQRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	out, err := h.flows.FAQ(c.Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(out)
}

// DescribeMission drafts a mission description from staff notes.
func (h *AIHandler) DescribeMission(c fiber.Ctx) error {
	var req service.DescribeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	out, err := h.flows.DescribeMission(c.Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(out)
}

// flowError reports model failures as 502; everything else goes through respondError.
func (h *AIHandler) flowError(c fiber.Ctx, err error) error {
	var flowErr *service.FlowError
	if errors.As(err, &flowErr) {
		h.logger.Warn("AI flow failed", zap.String("flow", flowErr.Flow), zap.Error(flowErr.Err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "AI failed: " + flowErr.Err.Error()})
	}
	return respondError(c, h.logger, err)
}
