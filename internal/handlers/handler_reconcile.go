package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	portssvc "github.com/rhodetech/fx_ledger_app/internal/core/ports/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/rhodetech/fx_ledger_app/internal/middleware"
)

// reconcileHandler handles HTTP requests for reconciliation previews.
type reconcileHandler struct {
	reconcileService portssvc.ReconcileSvcFacade
}

func newReconcileHandler(rs portssvc.ReconcileSvcFacade) *reconcileHandler {
	return &reconcileHandler{reconcileService: rs}
}

// registerReconcileRoutes registers routes related to reconciliation.
func registerReconcileRoutes(rg *gin.RouterGroup, reconcileService portssvc.ReconcileSvcFacade) {
	h := newReconcileHandler(reconcileService)

	reconciliation := rg.Group("/reconciliation")
	{
		reconciliation.POST("/residuals", h.previewResiduals)
		reconciliation.POST("/total", h.batchTotal)
	}
}

func (h *reconcileHandler) previewResiduals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResidualPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.reconcileService.AvailableResiduals(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute residuals", slog.String("move_line_id", req.MoveLineID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute residuals"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToResidualPreviewResponse(req.MoveLineID, result))
}

func (h *reconcileHandler) batchTotal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BatchTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	total, err := h.reconcileService.TotalToReconcile(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute batch total", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute batch total"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BatchTotalResponse{
		Total:        total,
		CurrencyCode: req.PaymentCurrencyCode,
	})
}
