package handler

import (
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// VolunteerHandler accepts volunteer applications.
type VolunteerHandler struct {
	volunteers *service.VolunteerService
	logger     *zap.Logger
}

// NewVolunteerHandler creates a new volunteer handler.
func NewVolunteerHandler(volunteers *service.VolunteerService, logger *zap.Logger) *VolunteerHandler {
	return &VolunteerHandler{volunteers: volunteers, logger: logger.Named("http")}
}

// Register sets up volunteer routes.
func (h *VolunteerHandler) Register(router fiber.Router) {
	router.Post("/volunteers", h.Apply)
}

// Apply records an application and returns the matricule.
func (h *VolunteerHandler) Apply(c fiber.Ctx) error {
	var req service.ApplyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	v, err := h.volunteers.Apply(c.Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        v.ID,
		"matricule": v.Matricule,
		"status":    v.Status,
		"message":   "Candidature enregistrée. Conservez votre matricule, il vous sera demandé pour vous inscrire aux missions.",
	})
}
