package handler

import (
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// MissionHandler serves the public mission catalogue and registration.
type MissionHandler struct {
	missions     *service.MissionService
	registration *service.RegistrationService
	logger       *zap.Logger
}

// NewMissionHandler creates a new mission handler.
func NewMissionHandler(missions *service.MissionService, registration *service.RegistrationService, logger *zap.Logger) *MissionHandler {
	return &MissionHandler{missions: missions, registration: registration, logger: logger.Named("http")}
}

// Register sets up mission routes.
func (h *MissionHandler) Register(router fiber.Router) {
	missions := router.Group("/missions")
	missions.Get("/", h.ListOpen)
	missions.Get("/:id", h.Get)
	missions.Post("/:id/register", h.RegisterVolunteer)
}

// ListOpen returns missions accepting registrations.
func (h *MissionHandler) ListOpen(c fiber.Ctx) error {
	missions, err := h.missions.ListOpen(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"missions": missions,
		"count":    len(missions),
	})
}

// Get returns one mission.
func (h *MissionHandler) Get(c fiber.Ctx) error {
	m, err := h.missions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(m)
}

// RegisterVolunteer adds the volunteer identified by matricule to the mission.
// The body of the answer is always {success, message, reason}.
func (h *MissionHandler) RegisterVolunteer(c fiber.Ctx) error {
	var body struct {
		Matricule string `json:"matricule"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c)
	}

	res, err := h.registration.Register(c.Context(), c.Params("id"), body.Matricule)
	if err != nil && res.Kind != service.KindInfrastructure {
		return respondError(c, h.logger, err)
	}
	if err != nil {
		h.logger.Error("registration failed", zap.String("mission_id", c.Params("id")), zap.Error(err))
	}
	return c.Status(registrationStatus(res)).JSON(res)
}

func registrationStatus(res service.Result) int {
	if res.Success {
		return fiber.StatusCreated
	}
	switch res.Kind {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindIneligible:
		return fiber.StatusForbidden
	case service.KindClosed, service.KindFull, service.KindDuplicate:
		return fiber.StatusConflict
	case service.KindInfrastructure:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusOK
	}
}
