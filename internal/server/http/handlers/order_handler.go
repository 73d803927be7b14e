package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/server/http/dto"
	"github.com/feastline/ordercore/internal/usecase"
)

// OrderHandler manages the customer-facing order endpoints.
type OrderHandler struct {
	facade UserOrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade UserOrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles POST /user/order/submit.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Submit(c.Request.Context(), CurrentUserID(c), usecase.SubmitOrder{
		AddressID:             req.AddressID,
		PayMethod:             req.PayMethod,
		Remark:                req.Remark,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		TablewareNumber:       req.TablewareNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{
		ID:          order.ID,
		OrderTime:   order.OrderTime,
		OrderNumber: order.Number,
		OrderAmount: order.Amount,
	})
}

// Payment handles PUT /user/order/payment.
func (h *OrderHandler) Payment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	intent, err := h.facade.RequestPayment(c.Request.Context(), CurrentUserID(c), req.OrderNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// Cancel handles POST /user/order/cancel/:id.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.CancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.facade.Cancel(c.Request.Context(), id, req.Reason, usecase.ActorUser); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Repetition handles POST /user/order/repetition/:id.
func (h *OrderHandler) Repetition(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.Repeat(c.Request.Context(), CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Reminder handles GET /user/order/reminder/:id.
func (h *OrderHandler) Reminder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.Remind(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// History handles GET /user/order/historyOrders.
func (h *OrderHandler) History(c *gin.Context) {
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	result, err := h.facade.History(c.Request.Context(), CurrentUserID(c), status, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.PagedOrdersResponse{
		Total:   result.Total,
		Records: make([]dto.OrderResponse, 0, len(result.Entries)),
	}
	for _, entry := range result.Entries {
		resp.Records = append(resp.Records, toOrderResponse(&entry.Order, entry.Lines))
	}
	c.JSON(http.StatusOK, resp)
}

// Details handles GET /user/order/orderDetail/:id.
func (h *OrderHandler) Details(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, lines, err := h.facade.Details(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, lines))
}

func toOrderResponse(order *model.Order, lines []model.OrderLine) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:           order.ID,
		Number:       order.Number,
		Status:       int(order.Status),
		PayStatus:    int(order.PayStatus),
		Amount:       order.Amount,
		Phone:        order.Phone,
		Address:      order.Address,
		Consignee:    order.Consignee,
		OrderTime:    order.OrderTime,
		CheckoutTime: order.CheckoutTime,
		CancelReason: order.CancelReason,
		Lines:        make([]dto.OrderLineResponse, 0, len(lines)),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			Name:     line.Name,
			Flavor:   line.Flavor,
			Quantity: line.Quantity,
			Amount:   line.Amount,
			Image:    line.Image,
		})
	}
	return resp
}
