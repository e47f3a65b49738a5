package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portssvc "github.com/kobopay/fx_wallet_app/internal/core/ports/services"
	"github.com/kobopay/fx_wallet_app/internal/dto"
	"github.com/kobopay/fx_wallet_app/internal/middleware"
)

// rateLockHandler handles HTTP requests for the rate lock lifecycle. All
// operations act on the authenticated client's own locks.
type rateLockHandler struct {
	lockService      portssvc.RateLockSvcFacade
	clock            ports.Clock
	warningThreshold time.Duration
}

// newRateLockHandler creates a new rateLockHandler.
func newRateLockHandler(ls portssvc.RateLockSvcFacade, clock ports.Clock, warningThreshold time.Duration) *rateLockHandler {
	return &rateLockHandler{
		lockService:      ls,
		clock:            clock,
		warningThreshold: warningThreshold,
	}
}

// registerRateLockRoutes registers routes related to rate locks.
func registerRateLockRoutes(rg *gin.RouterGroup, lockService portssvc.RateLockSvcFacade, clock ports.Clock, warningThreshold time.Duration) {
	h := newRateLockHandler(lockService, clock, warningThreshold)

	locks := rg.Group("/rate-locks")
	{
		locks.POST("", h.createRateLock)
		locks.GET("", h.listRateLocks)
		locks.GET("/:lockID", h.getRateLock)
		locks.POST("/:lockID/use", h.useRateLock)
		locks.POST("/:lockID/extend", h.extendRateLock)
		locks.POST("/:lockID/cancel", h.cancelRateLock)
	}
}

// createRateLock locks the currently applicable rate for the caller.
func (h *rateLockHandler) createRateLock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRateLock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		logger.Error("Client ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	req.ClientID = clientID

	lock, err := h.lockService.LockRate(c.Request.Context(), req)
	if err != nil {
		h.respondLockError(c, err, "Failed to create rate lock")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateLockResponse(lock, h.clock.Now(), h.warningThreshold))
}

// listRateLocks returns the caller's locks, newest first.
func (h *rateLockHandler) listRateLocks(c *gin.Context) {
	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	locks, total, err := h.lockService.ListClientRateLocks(c.Request.Context(), clientID, page, pageSize)
	if err != nil {
		h.respondLockError(c, err, "Failed to list rate locks")
		return
	}

	c.JSON(http.StatusOK, dto.ToListRateLocksResponse(locks, total, page, pageSize, h.clock.Now(), h.warningThreshold))
}

// getRateLock returns one of the caller's locks.
func (h *rateLockHandler) getRateLock(c *gin.Context) {
	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lock, err := h.lockService.GetRateLock(c.Request.Context(), c.Param("lockID"), clientID)
	if err != nil {
		h.respondLockError(c, err, "Failed to retrieve rate lock")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateLockResponse(lock, h.clock.Now(), h.warningThreshold))
}

// useRateLock consumes a lock on settlement. Locks are one-shot.
func (h *rateLockHandler) useRateLock(c *gin.Context) {
	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lock, err := h.lockService.UseLock(c.Request.Context(), c.Param("lockID"), clientID)
	if err != nil {
		h.respondLockError(c, err, "Failed to use rate lock")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateLockResponse(lock, h.clock.Now(), h.warningThreshold))
}

// extendRateLock pushes an active lock's validity window forward.
func (h *rateLockHandler) extendRateLock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExtendRateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ExtendRateLock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	additional := time.Duration(req.AdditionalSeconds) * time.Second
	lock, err := h.lockService.ExtendLock(c.Request.Context(), c.Param("lockID"), clientID, additional)
	if err != nil {
		h.respondLockError(c, err, "Failed to extend rate lock")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateLockResponse(lock, h.clock.Now(), h.warningThreshold))
}

// cancelRateLock terminates a lock before use.
func (h *rateLockHandler) cancelRateLock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	// The cancellation reason is optional; an empty body is accepted.
	var req dto.CancelRateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for CancelRateLock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	clientID, ok := middleware.GetClientIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.lockService.CancelLock(c.Request.Context(), c.Param("lockID"), clientID, req.Reason); err != nil {
		h.respondLockError(c, err, "Failed to cancel rate lock")
		return
	}

	c.Status(http.StatusNoContent)
}

// respondLockError maps lock lifecycle errors to HTTP responses.
func (h *rateLockHandler) respondLockError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNoApplicableRate):
		c.JSON(http.StatusNotFound, gin.H{"error": "No applicable rate for the requested pair"})
	case errors.Is(err, apperrors.ErrLockingDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Rate locking is disabled"})
	case errors.Is(err, apperrors.ErrLockLimitExceeded),
		errors.Is(err, apperrors.ErrDuplicateLockForPair),
		errors.Is(err, apperrors.ErrAlreadyUsed),
		errors.Is(err, apperrors.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrLockExpired),
		errors.Is(err, apperrors.ErrLockNotExtendable),
		errors.Is(err, apperrors.ErrRateWindowTooShort),
		errors.Is(err, apperrors.ErrDomainInvariant):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
