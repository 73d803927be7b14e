package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feastline/ordercore/internal/server/http/dto"
	"github.com/feastline/ordercore/internal/usecase"
)

// AdminOrderHandler manages the merchant-side order endpoints.
type AdminOrderHandler struct {
	facade AdminOrderFacade
}

// NewAdminOrderHandler constructs AdminOrderHandler.
func NewAdminOrderHandler(facade AdminOrderFacade) *AdminOrderHandler {
	return &AdminOrderHandler{facade: facade}
}

// Confirm handles PUT /admin/order/confirm.
func (h *AdminOrderHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.Confirm(c.Request.Context(), req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Rejection handles PUT /admin/order/rejection.
func (h *AdminOrderHandler) Rejection(c *gin.Context) {
	var req dto.RejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.Reject(c.Request.Context(), req.ID, req.RejectionReason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Cancel handles PUT /admin/order/cancel.
func (h *AdminOrderHandler) Cancel(c *gin.Context) {
	var req dto.AdminCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.Cancel(c.Request.Context(), req.ID, req.CancelReason, usecase.ActorMerchant); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

const searchTimeLayout = "2006-01-02 15:04:05"

// Search handles GET /admin/order/conditionSearch.
func (h *AdminOrderHandler) Search(c *gin.Context) {
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	q := usecase.SearchQuery{
		Number: c.Query("number"),
		Phone:  c.Query("phone"),
		Status: status,
	}
	if raw := c.Query("beginTime"); raw != "" {
		ts, err := time.Parse(searchTimeLayout, raw)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		q.From = &ts
	}
	if raw := c.Query("endTime"); raw != "" {
		ts, err := time.Parse(searchTimeLayout, raw)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		q.To = &ts
	}

	result, err := h.facade.Search(c.Request.Context(), q, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.PagedOrdersResponse{
		Total:   result.Total,
		Records: make([]dto.OrderResponse, 0, len(result.Entries)),
	}
	for _, entry := range result.Entries {
		view := toOrderResponse(&entry.Order, nil)
		view.OrderDishes = entry.Dishes
		resp.Records = append(resp.Records, view)
	}
	c.JSON(http.StatusOK, resp)
}

// Delivery handles PUT /admin/order/delivery/:id.
func (h *AdminOrderHandler) Delivery(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.Dispatch(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Complete handles PUT /admin/order/complete/:id.
func (h *AdminOrderHandler) Complete(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.Complete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
