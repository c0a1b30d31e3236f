package http

import (
	"net/http"
	"strconv"

	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/service"
	"finfluencer-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LeaderboardHandler handles HTTP requests for the creator leaderboard.
type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
	logger             *logger.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService service.LeaderboardService, logger *logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, logger: logger}
}

// RegisterRoutes registers the leaderboard routes to the Echo group.
func (h *LeaderboardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetLeaderboard)
}

// GetLeaderboard godoc
// @Summary Get the creator leaderboard
// @Description Creators ordered by accuracy score, then by number of verified predictions
// @Tags leaderboard
// @Produce  json
// @Param   limit  query    int false    "Maximum number of creators"
// @Success 200 {array} dto.LeaderboardEntry
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get leaderboard", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get leaderboard"})
	}
	return c.JSON(http.StatusOK, entries)
}
