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

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.createPayment)
		payments.POST("/:id/confirm", h.confirmPayment)
		payments.GET("/:id/button-state", h.buttonState)
		payments.POST("/button-states", h.buttonStates)
	}
}

func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create payment",
		slog.String("journal_id", req.JournalID),
		slog.String("payment_type", req.PaymentType),
		slog.Any("amount", req.Amount),
		slog.String("currency", req.CurrencyCode),
		slog.Bool("apply_manual_rate", req.ApplyManualCurrencyExchange),
	)

	resp, err := h.paymentService.CreatePayment(c.Request.Context(), req, requestUserID(c))
	if err != nil {
		var missingCfg *apperrors.MissingConfigurationError
		if errors.As(err, &missingCfg) {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingCfg.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create payment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		}
		return
	}

	logger.Info("Payment created", slog.String("payment_id", resp.PaymentID))
	c.JSON(http.StatusCreated, resp)
}

func (h *paymentHandler) confirmPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	err := h.paymentService.ConfirmPayment(c.Request.Context(), paymentID, requestUserID(c))
	if err != nil {
		var insufficient *apperrors.InsufficientFundsError
		if errors.As(err, &insufficient) {
			logger.Warn("Payment confirmation blocked by journal balance",
				slog.String("payment_id", paymentID),
				slog.Any("attempted", insufficient.AttemptedAmount),
				slog.Any("available", insufficient.AvailableBalance),
			)
			c.JSON(http.StatusUnprocessableEntity, dto.InsufficientFundsResponse{
				Error:            insufficient.Error(),
				AttemptedAmount:  insufficient.AttemptedAmount,
				AvailableBalance: insufficient.AvailableBalance,
			})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to confirm payment", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		}
		return
	}

	logger.Info("Payment confirmed", slog.String("payment_id", paymentID))
	c.Status(http.StatusNoContent)
}

func (h *paymentHandler) buttonState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	state, err := h.paymentService.ButtonState(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to compute button state", slog.String("payment_id", paymentID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute button state"})
		}
		return
	}

	c.JSON(http.StatusOK, state)
}

// buttonStatesRequest is the batched button-state payload.
type buttonStatesRequest struct {
	PaymentIDs []string `json:"paymentIDs" binding:"required,min=1"`
}

func (h *paymentHandler) buttonStates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req buttonStatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	states, err := h.paymentService.ButtonStates(c.Request.Context(), req.PaymentIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute button states", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute button states"})
		}
		return
	}

	c.JSON(http.StatusOK, states)
}
