package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func pageParams(c *gin.Context) (page, size int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.Status(http.StatusBadRequest)
		return 0, 0, false
	}
	size, err = strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || size < 1 {
		c.Status(http.StatusBadRequest)
		return 0, 0, false
	}
	return page, size, true
}

func statusQuery(c *gin.Context) (*model.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	status := model.OrderStatus(v)
	return &status, true
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to HTTP statuses with the reason attached.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrOrderNotFound),
		errors.Is(err, domainErrors.ErrAddressNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainErrors.ErrOrderStatus),
		errors.Is(err, domainErrors.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrAlreadyPaid),
		errors.Is(err, domainErrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domainErrors.ErrPaymentGateway),
		errors.Is(err, domainErrors.ErrRefundGateway):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
