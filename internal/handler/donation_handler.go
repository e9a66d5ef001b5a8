package handler

import (
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// DonationHandler accepts donation pledges.
type DonationHandler struct {
	donations *service.DonationService
	logger    *zap.Logger
}

// NewDonationHandler creates a new donation handler.
func NewDonationHandler(donations *service.DonationService, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, logger: logger.Named("http")}
}

// Register sets up donation routes.
func (h *DonationHandler) Register(router fiber.Router) {
	router.Post("/donations", h.Pledge)
}

// Pledge records a pending donation.
func (h *DonationHandler) Pledge(c fiber.Ctx) error {
	var req service.PledgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	d, err := h.donations.Pledge(c.Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}
