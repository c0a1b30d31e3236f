package http

import (
	"errors"
	"net/http"
	"strconv"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/internal/verifier/service"
	"finfluencer-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// VerificationHandler handles HTTP requests that trigger verification.
type VerificationHandler struct {
	verificationService service.VerificationService
	cfg                 config.Verifier
	logger              *logger.Logger
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationService service.VerificationService, cfg config.Verifier, logger *logger.Logger) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the verification routes to the Echo group.
func (h *VerificationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/predictions/:id/verify", h.VerifyPrediction)
	g.POST("/verifications/batch", h.RunBatch)
}

// VerifyPrediction godoc
// @Summary Verify a prediction
// @Description Grade one stored prediction against market data, persist the result and refresh creator scores
// @Tags verifications
// @Produce  json
// @Param   id  path    int true    "Prediction ID"
// @Success 200 {object} dto.VerificationResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /predictions/{id}/verify [post]
func (h *VerificationHandler) VerifyPrediction(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid prediction ID"})
	}

	result, err := h.verificationService.VerifyByID(c.Request().Context(), uint(id))
	if errors.Is(err, service.ErrPredictionNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("Failed to verify prediction", logger.ErrorField(err), logger.IntField("prediction_id", int(id)))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// RunBatch godoc
// @Summary Run a verification batch
// @Description Verify up to limit unverified predictions in creation order and refresh creator scores once
// @Tags verifications
// @Accept  json
// @Produce  json
// @Param   batch  body    dto.BatchRequest   false    "Batch size"
// @Success 200 {object} dto.BatchSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /verifications/batch [post]
func (h *VerificationHandler) RunBatch(c echo.Context) error {
	var req dto.BatchRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
	}
	if req.Limit < 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must not be negative"})
	}
	if req.Limit == 0 {
		req.Limit = h.cfg.BatchLimit
	}

	summary, err := h.verificationService.VerifyUnverified(c.Request().Context(), req.Limit, h.cfg.EffectiveBatchDelay())
	if errors.Is(err, service.ErrBatchAlreadyRunning) {
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("Failed to run verification batch", logger.ErrorField(err), logger.StringField("run_id", summary.RunID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, summary)
}
