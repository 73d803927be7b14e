package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NotifyHandler receives asynchronous callbacks from the payment gateway.
type NotifyHandler struct {
	facade CallbackFacade
	logger *slog.Logger
}

// NewNotifyHandler constructs NotifyHandler.
func NewNotifyHandler(facade CallbackFacade, logger *slog.Logger) *NotifyHandler {
	return &NotifyHandler{facade: facade, logger: logger}
}

// PaySuccess handles POST /notify/paySuccess. The gateway retries on any
// non-200 response, so processing failures must answer with one; a duplicate
// delivery is acknowledged as success without re-applying.
func (h *NotifyHandler) PaySuccess(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "FAIL", "message": "read body"})
		return
	}

	if err := h.facade.ApplyPaymentCallback(c.Request.Context(), body); err != nil {
		h.logger.Error("payment callback rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "SUCCESS", "message": "SUCCESS"})
}
