package handler

import (
	"net"
	"strconv"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/middleware"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// AdminHandler serves the staff back office under /admin.
type AdminHandler struct {
	blocklist  port.BlocklistStore
	logs       port.RequestLogReader
	volunteers *service.VolunteerService
	missions   *service.MissionService
	donations  *service.DonationService
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	blocklist port.BlocklistStore,
	logs port.RequestLogReader,
	volunteers *service.VolunteerService,
	missions *service.MissionService,
	donations *service.DonationService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		blocklist:  blocklist,
		logs:       logs,
		volunteers: volunteers,
		missions:   missions,
		donations:  donations,
		logger:     logger.Named("admin"),
	}
}

// Register sets up admin routes. The router is expected to be guarded by
// JWTMiddleware and RequireRole(domain.RoleAdmin).
func (h *AdminHandler) Register(admin fiber.Router) {
	admin.Get("/blocked-ips", h.ListBlockedIPs)
	admin.Post("/blocked-ips", h.BlockIP)
	admin.Delete("/blocked-ips/:ip", h.UnblockIP)

	admin.Get("/request-logs", h.ListRequestLogs)

	admin.Get("/volunteers", h.ListVolunteers)
	admin.Patch("/volunteers/:id/status", h.SetVolunteerStatus)

	admin.Get("/missions", h.ListMissions)
	admin.Post("/missions", h.CreateMission)
	admin.Patch("/missions/:id/status", h.SetMissionStatus)

	admin.Get("/donations", h.ListDonations)
}

// ListBlockedIPs returns the blocklist.
func (h *AdminHandler) ListBlockedIPs(c fiber.Ctx) error {
	ips, err := h.blocklist.ListBlockedIPs(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"blocked_ips": ips, "count": len(ips)})
}

// BlockIP adds an address to the blocklist.
func (h *AdminHandler) BlockIP(c fiber.Ctx) error {
	var body struct {
		IP     string `json:"ip"`
		Reason string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c)
	}
	ip := net.ParseIP(strings.TrimSpace(body.IP))
	if ip == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid ip address"})
	}

	b, err := h.blocklist.BlockIP(c.Context(), ip.String(), strings.TrimSpace(body.Reason))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.logger.Info("ip blocked", zap.String("ip", b.IP), zap.String("by", actor(c)))
	return c.Status(fiber.StatusCreated).JSON(b)
}

// UnblockIP removes an address from the blocklist.
func (h *AdminHandler) UnblockIP(c fiber.Ctx) error {
	ip := net.ParseIP(c.Params("ip"))
	if ip == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid ip address"})
	}
	if err := h.blocklist.UnblockIP(c.Context(), ip.String()); err != nil {
		return respondError(c, h.logger, err)
	}
	h.logger.Info("ip unblocked", zap.String("ip", ip.String()), zap.String("by", actor(c)))
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRequestLogs returns audit rows with optional filtering.
func (h *AdminHandler) ListRequestLogs(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	threatOnly, _ := strconv.ParseBool(c.Query("threat", "false"))

	ipFilter := strings.TrimSpace(c.Query("ip"))
	if ipFilter != "" {
		ip := net.ParseIP(ipFilter)
		if ip == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid ip address"})
		}
		ipFilter = ip.String()
	}

	logs, err := h.logs.ListRequestLogs(c.Context(), domain.RequestLogFilter{
		IP:         ipFilter,
		ThreatOnly: threatOnly,
		Limit:      limit,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

// ListVolunteers returns volunteers, optionally filtered by ?status=.
func (h *AdminHandler) ListVolunteers(c fiber.Ctx) error {
	volunteers, err := h.volunteers.List(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"volunteers": volunteers, "count": len(volunteers)})
}

// SetVolunteerStatus records the administrator decision on a volunteer.
func (h *AdminHandler) SetVolunteerStatus(c fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c)
	}
	if err := h.volunteers.SetStatus(c.Context(), c.Params("id"), body.Status); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "status": body.Status})
}

// ListMissions returns every mission, optionally filtered by ?status=.
func (h *AdminHandler) ListMissions(c fiber.Ctx) error {
	missions, err := h.missions.List(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"missions": missions, "count": len(missions)})
}

// CreateMission adds a planned mission.
func (h *AdminHandler) CreateMission(c fiber.Ctx) error {
	var req service.CreateMissionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	m, err := h.missions.Create(c.Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// SetMissionStatus moves a mission through its lifecycle.
func (h *AdminHandler) SetMissionStatus(c fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c)
	}
	if err := h.missions.SetStatus(c.Context(), c.Params("id"), body.Status); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "status": body.Status})
}

// ListDonations returns recent pledges.
func (h *AdminHandler) ListDonations(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	donations, err := h.donations.List(c.Context(), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"donations": donations, "count": len(donations)})
}

func actor(c fiber.Ctx) string {
	if uc := middleware.GetUserContext(c); uc != nil {
		return uc.Email
	}
	return ""
}
