package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	portssvc "github.com/kobopay/fx_wallet_app/internal/core/ports/services"
	"github.com/kobopay/fx_wallet_app/internal/dto"
	"github.com/kobopay/fx_wallet_app/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates and
// rate resolution.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
	resolver    portssvc.RateResolverSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade, resolver portssvc.RateResolverSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		rateService: rs,
		resolver:    resolver,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade, resolver portssvc.RateResolverSvc) {
	h := newExchangeRateHandler(rateService, resolver)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("", h.listExchangeRates)
		rates.GET("/resolve", h.resolveRate)
		rates.GET("/:rateID", h.getExchangeRateByID)
		rates.PUT("/:rateID/values", h.updateRateValues)
		rates.POST("/:rateID/extend", h.extendValidity)
		rates.POST("/:rateID/expire", h.expireRate)
		rates.POST("/:rateID/deactivate", h.deactivateRate)
		rates.PUT("/:rateID/tiers", h.manageTiers)
	}
}

// createExchangeRate creates a General, Group or Individual rate.
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		logger.Error("Creator client ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create exchange rate",
		slog.String("pair", req.BaseCurrencyCode+"/"+req.TargetCurrencyCode),
		slog.String("type", string(req.Type)),
	)

	rate, err := h.rateService.CreateExchangeRate(c.Request.Context(), req, creatorID)
	if err != nil {
		h.respondRateError(c, err, "Failed to create exchange rate")
		return
	}

	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates returns rates matching the query filter.
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ListExchangeRatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for ListExchangeRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rates, total, err := h.rateService.ListExchangeRates(c.Request.Context(), req)
	if err != nil {
		h.respondRateError(c, err, "Failed to list exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRatesResponse(rates, total, req.Page, req.PageSize))
}

// getExchangeRateByID returns one rate with its tiers.
func (h *exchangeRateHandler) getExchangeRateByID(c *gin.Context) {
	rateID := c.Param("rateID")

	rate, err := h.rateService.GetExchangeRateByID(c.Request.Context(), rateID)
	if err != nil {
		h.respondRateError(c, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// resolveRate answers which single rate applies for a client, pair and
// optional amount, without creating anything.
func (h *exchangeRateHandler) resolveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResolveRateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for ResolveRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	// Default the client to the caller when not querying on behalf of another.
	if req.ClientID == "" {
		if clientID, ok := middleware.GetClientIDFromContext(c); ok {
			req.ClientID = clientID
		}
	}

	resolution, err := h.resolver.ResolveRate(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoApplicableRate):
			c.JSON(http.StatusNotFound, gin.H{"error": "No applicable rate for the requested pair"})
		case errors.Is(err, apperrors.ErrNoApplicableTier):
			c.JSON(http.StatusNotFound, gin.H{"error": "No tier covers the requested amount"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToResolveRateResponse(resolution))
}

// updateRateValues replaces a rate's market quote and margin.
func (h *exchangeRateHandler) updateRateValues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("rateID")

	var req dto.UpdateRateValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRateValues", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.rateService.UpdateCurrencyValues(c.Request.Context(), rateID, req, updaterID)
	if err != nil {
		h.respondRateError(c, err, "Failed to update exchange rate values")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// extendValidity pushes a rate's validity window forward.
func (h *exchangeRateHandler) extendValidity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("rateID")

	var req dto.ExtendValidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ExtendValidity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.rateService.ExtendValidity(c.Request.Context(), rateID, req, updaterID)
	if err != nil {
		h.respondRateError(c, err, "Failed to extend exchange rate validity")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// expireRate closes a rate's window just before a successor starts.
func (h *exchangeRateHandler) expireRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("rateID")

	var req dto.ExpireRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ExpireRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.rateService.ExpireExchangeRate(c.Request.Context(), rateID, req, updaterID)
	if err != nil {
		h.respondRateError(c, err, "Failed to expire exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// deactivateRate switches a rate off. Deactivating twice is a no-op.
func (h *exchangeRateHandler) deactivateRate(c *gin.Context) {
	rateID := c.Param("rateID")

	updaterID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.rateService.DeactivateExchangeRate(c.Request.Context(), rateID, updaterID)
	if err != nil {
		h.respondRateError(c, err, "Failed to deactivate exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// manageTiers atomically replaces a General rate's tier collection.
func (h *exchangeRateHandler) manageTiers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("rateID")

	var req dto.ManageTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ManageTiers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updaterID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rate, err := h.rateService.ManageTiers(c.Request.Context(), rateID, req, updaterID)
	if err != nil {
		h.respondRateError(c, err, "Failed to replace rate tiers")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// respondRateError maps service errors to HTTP responses.
func (h *exchangeRateHandler) respondRateError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDomainInvariant),
		errors.Is(err, apperrors.ErrInvalidRateType),
		errors.Is(err, apperrors.ErrTierOverlap),
		errors.Is(err, apperrors.ErrTierBoundaryMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
