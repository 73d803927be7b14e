package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/server/http/dto"
	"github.com/feastline/ordercore/internal/server/http/middleware"
	testhelpers "github.com/feastline/ordercore/internal/test"
	"github.com/feastline/ordercore/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, route, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(id int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, id)
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestOrderHandlerSubmit(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{SubmitFn: func(ctx context.Context, userID int64, in usecase.SubmitOrder) (*model.Order, error) {
		if userID != 7 || in.AddressID != 10 || in.Remark != "no onions" {
			t.Fatalf("unexpected arguments: %d %+v", userID, in)
		}
		return &model.Order{ID: 3, Number: "20260829120000000009", Amount: decimal.RequireFromString("35.00")}, nil
	}}
	body, _ := json.Marshal(dto.SubmitRequest{AddressID: 10, PayMethod: 1, Remark: "no onions"})

	resp := performRequest(t, http.MethodPost, "/user/order/submit", "/user/order/submit",
		NewOrderHandler(facade).Submit, asUser(7), body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var out dto.SubmitResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 3 || out.OrderNumber != "20260829120000000009" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestOrderHandlerSubmitValidation(t *testing.T) {
	resp := performRequest(t, http.MethodPost, "/user/order/submit", "/user/order/submit",
		NewOrderHandler(testhelpers.OrderFacadeStub{}).Submit, asUser(7), []byte(`{"remark":"missing address"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOrderHandlerSubmitEmptyCart(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{SubmitFn: func(context.Context, int64, usecase.SubmitOrder) (*model.Order, error) {
		return nil, domainErrors.ErrEmptyCart
	}}
	body, _ := json.Marshal(dto.SubmitRequest{AddressID: 10})

	resp := performRequest(t, http.MethodPost, "/user/order/submit", "/user/order/submit",
		NewOrderHandler(facade).Submit, asUser(7), body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOrderHandlerPayment(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{RequestPaymentFn: func(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error) {
		if userID != 7 || orderNumber != "20260829120000000009" {
			t.Fatalf("unexpected arguments: %d %s", userID, orderNumber)
		}
		return &model.PaymentIntent{Package: "prepay_id=wx", SignType: "RSA"}, nil
	}}
	body, _ := json.Marshal(dto.PaymentRequest{OrderNumber: "20260829120000000009"})

	resp := performRequest(t, http.MethodPut, "/user/order/payment", "/user/order/payment",
		NewOrderHandler(facade).Payment, asUser(7), body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var intent model.PaymentIntent
	if err := json.Unmarshal(resp.Body.Bytes(), &intent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if intent.Package != "prepay_id=wx" {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestOrderHandlerPaymentAlreadyPaid(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{RequestPaymentFn: func(context.Context, int64, string) (*model.PaymentIntent, error) {
		return nil, domainErrors.ErrAlreadyPaid
	}}
	body, _ := json.Marshal(dto.PaymentRequest{OrderNumber: "n"})

	resp := performRequest(t, http.MethodPut, "/user/order/payment", "/user/order/payment",
		NewOrderHandler(facade).Payment, asUser(7), body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestOrderHandlerCancelPassesActor(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{CancelFn: func(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error {
		if orderID != 5 || reason != "too slow" || actor != usecase.ActorUser {
			t.Fatalf("unexpected arguments: %d %q %q", orderID, reason, actor)
		}
		return nil
	}}
	body, _ := json.Marshal(dto.CancelRequest{Reason: "too slow"})

	resp := performRequest(t, http.MethodPost, "/user/order/cancel/:id", "/user/order/cancel/5",
		NewOrderHandler(facade).Cancel, asUser(7), body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestOrderHandlerCancelWithoutBody(t *testing.T) {
	called := false
	facade := testhelpers.OrderFacadeStub{CancelFn: func(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error {
		called = true
		if reason != "" {
			t.Fatalf("expected empty reason, got %q", reason)
		}
		return nil
	}}

	resp := performRequest(t, http.MethodPost, "/user/order/cancel/:id", "/user/order/cancel/5",
		NewOrderHandler(facade).Cancel, asUser(7), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !called {
		t.Fatalf("facade not called")
	}
}

func TestOrderHandlerBadOrderID(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/user/order/reminder/:id", "/user/order/reminder/abc",
		NewOrderHandler(testhelpers.OrderFacadeStub{}).Reminder, asUser(7), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOrderHandlerDetails(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{DetailsFn: func(ctx context.Context, orderID int64) (*model.Order, []model.OrderLine, error) {
		order := &model.Order{ID: orderID, Number: "20260829120000000009", Status: model.OrderStatusConfirmed, Amount: decimal.RequireFromString("35.00")}
		lines := []model.OrderLine{{Name: "noodles", Quantity: 2, Amount: decimal.RequireFromString("25.00")}}
		return order, lines, nil
	}}

	resp := performRequest(t, http.MethodGet, "/user/order/orderDetail/:id", "/user/order/orderDetail/5",
		NewOrderHandler(facade).Details, asUser(7), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var out dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 5 || out.Status != int(model.OrderStatusConfirmed) {
		t.Fatalf("unexpected response %+v", out)
	}
	if len(out.Lines) != 1 || out.Lines[0].Name != "noodles" {
		t.Fatalf("unexpected lines %+v", out.Lines)
	}
}

func TestOrderHandlerDetailsNotFound(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{DetailsFn: func(context.Context, int64) (*model.Order, []model.OrderLine, error) {
		return nil, nil, domainErrors.ErrOrderNotFound
	}}

	resp := performRequest(t, http.MethodGet, "/user/order/orderDetail/:id", "/user/order/orderDetail/404",
		NewOrderHandler(facade).Details, asUser(7), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestOrderHandlerHistory(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{HistoryFn: func(ctx context.Context, userID int64, status *model.OrderStatus, page, size int) (*usecase.HistoryPage, error) {
		if userID != 7 || page != 2 || size != 5 {
			t.Fatalf("unexpected arguments: %d %d %d", userID, page, size)
		}
		if status == nil || *status != model.OrderStatusCompleted {
			t.Fatalf("unexpected status filter %v", status)
		}
		return &usecase.HistoryPage{
			Total: 11,
			Entries: []usecase.HistoryEntry{{
				Order: model.Order{ID: 3, Number: "20260829120000000009", Status: model.OrderStatusCompleted},
				Lines: []model.OrderLine{{Name: "noodles", Quantity: 2}},
			}},
		}, nil
	}}

	resp := performRequest(t, http.MethodGet, "/user/order/historyOrders",
		"/user/order/historyOrders?page=2&pageSize=5&status=5",
		NewOrderHandler(facade).History, asUser(7), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var out dto.PagedOrdersResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Total != 11 || len(out.Records) != 1 {
		t.Fatalf("unexpected page %+v", out)
	}
	if out.Records[0].Number != "20260829120000000009" || len(out.Records[0].Lines) != 1 {
		t.Fatalf("unexpected record %+v", out.Records[0])
	}
}

func TestOrderHandlerHistoryBadPage(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{HistoryFn: func(context.Context, int64, *model.OrderStatus, int, int) (*usecase.HistoryPage, error) {
		t.Fatal("facade called despite invalid paging")
		return nil, nil
	}}

	resp := performRequest(t, http.MethodGet, "/user/order/historyOrders",
		"/user/order/historyOrders?page=abc",
		NewOrderHandler(facade).History, asUser(7), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAdminHandlerConditionSearch(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{SearchFn: func(ctx context.Context, q usecase.SearchQuery, page, size int) (*usecase.SearchPage, error) {
		if q.Number != "1111" || q.Phone != "138" || page != 1 || size != 10 {
			t.Fatalf("unexpected arguments: %+v %d %d", q, page, size)
		}
		if q.Status == nil || *q.Status != model.OrderStatusToBeConfirmed {
			t.Fatalf("unexpected status filter %v", q.Status)
		}
		if q.From == nil || q.From.Hour() != 8 || q.To == nil || q.To.Hour() != 20 {
			t.Fatalf("unexpected time window %v %v", q.From, q.To)
		}
		return &usecase.SearchPage{
			Total: 1,
			Entries: []usecase.SearchEntry{{
				Order:  model.Order{ID: 5, Number: "20260829120000111100", Status: model.OrderStatusToBeConfirmed},
				Dishes: "noodles*2;",
			}},
		}, nil
	}}

	path := "/admin/order/conditionSearch?number=1111&phone=138&status=2" +
		"&beginTime=2026-08-29+08%3A00%3A00&endTime=2026-08-29+20%3A00%3A00"
	resp := performRequest(t, http.MethodGet, "/admin/order/conditionSearch", path,
		NewAdminOrderHandler(facade).Search, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var out dto.PagedOrdersResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Total != 1 || len(out.Records) != 1 {
		t.Fatalf("unexpected page %+v", out)
	}
	if out.Records[0].OrderDishes != "noodles*2;" {
		t.Fatalf("unexpected dish digest %q", out.Records[0].OrderDishes)
	}
	if len(out.Records[0].Lines) != 0 {
		t.Fatalf("search records should not carry full lines: %+v", out.Records[0].Lines)
	}
}

func TestAdminHandlerConditionSearchBadTime(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{SearchFn: func(context.Context, usecase.SearchQuery, int, int) (*usecase.SearchPage, error) {
		t.Fatal("facade called despite invalid time filter")
		return nil, nil
	}}

	resp := performRequest(t, http.MethodGet, "/admin/order/conditionSearch",
		"/admin/order/conditionSearch?beginTime=yesterday",
		NewAdminOrderHandler(facade).Search, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAdminHandlerConfirm(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{ConfirmFn: func(ctx context.Context, orderID int64) error {
		if orderID != 5 {
			t.Fatalf("unexpected order id %d", orderID)
		}
		return nil
	}}
	body, _ := json.Marshal(dto.ConfirmRequest{ID: 5})

	resp := performRequest(t, http.MethodPut, "/admin/order/confirm", "/admin/order/confirm",
		NewAdminOrderHandler(facade).Confirm, nil, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAdminHandlerConfirmWrongState(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{ConfirmFn: func(context.Context, int64) error {
		return domainErrors.ErrOrderStatus
	}}
	body, _ := json.Marshal(dto.ConfirmRequest{ID: 5})

	resp := performRequest(t, http.MethodPut, "/admin/order/confirm", "/admin/order/confirm",
		NewAdminOrderHandler(facade).Confirm, nil, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAdminHandlerRejectionRequiresReason(t *testing.T) {
	resp := performRequest(t, http.MethodPut, "/admin/order/rejection", "/admin/order/rejection",
		NewAdminOrderHandler(testhelpers.OrderFacadeStub{}).Rejection, nil, []byte(`{"id":5}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAdminHandlerRejectionRefundFailure(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{RejectFn: func(ctx context.Context, orderID int64, reason string) error {
		return domainErrors.ErrRefundGateway
	}}
	body, _ := json.Marshal(dto.RejectionRequest{ID: 5, RejectionReason: "out of stock"})

	resp := performRequest(t, http.MethodPut, "/admin/order/rejection", "/admin/order/rejection",
		NewAdminOrderHandler(facade).Rejection, nil, body)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", resp.Code)
	}
}

func TestAdminHandlerCancelPassesMerchantActor(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{CancelFn: func(ctx context.Context, orderID int64, reason string, actor usecase.Actor) error {
		if actor != usecase.ActorMerchant {
			t.Fatalf("unexpected actor %q", actor)
		}
		return nil
	}}
	body, _ := json.Marshal(dto.AdminCancelRequest{ID: 5, CancelReason: "kitchen closed"})

	resp := performRequest(t, http.MethodPut, "/admin/order/cancel", "/admin/order/cancel",
		NewAdminOrderHandler(facade).Cancel, nil, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAdminHandlerDeliveryAndComplete(t *testing.T) {
	dispatched, completed := false, false
	facade := testhelpers.OrderFacadeStub{
		DispatchFn: func(context.Context, int64) error { dispatched = true; return nil },
		CompleteFn: func(context.Context, int64) error { completed = true; return nil },
	}
	handler := NewAdminOrderHandler(facade)

	if resp := performRequest(t, http.MethodPut, "/admin/order/delivery/:id", "/admin/order/delivery/5", handler.Delivery, nil, nil); resp.Code != http.StatusOK {
		t.Fatalf("delivery: expected status 200, got %d", resp.Code)
	}
	if resp := performRequest(t, http.MethodPut, "/admin/order/complete/:id", "/admin/order/complete/5", handler.Complete, nil, nil); resp.Code != http.StatusOK {
		t.Fatalf("complete: expected status 200, got %d", resp.Code)
	}
	if !dispatched || !completed {
		t.Fatalf("facade not called: dispatched=%v completed=%v", dispatched, completed)
	}
}

func TestNotifyHandlerAcknowledgesSuccess(t *testing.T) {
	var received []byte
	facade := testhelpers.OrderFacadeStub{CallbackFn: func(ctx context.Context, raw []byte) error {
		received = raw
		return nil
	}}
	handler := NewNotifyHandler(facade, slog.New(slog.NewTextHandler(io.Discard, nil)))

	resp := performRequest(t, http.MethodPost, "/notify/paySuccess", "/notify/paySuccess",
		handler.PaySuccess, nil, []byte(`{"resource":{}}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if string(received) != `{"resource":{}}` {
		t.Fatalf("unexpected body passed to facade: %s", received)
	}

	var out map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["code"] != "SUCCESS" || out["message"] != "SUCCESS" {
		t.Fatalf("unexpected ack %v", out)
	}
}

func TestNotifyHandlerReportsFailure(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{CallbackFn: func(context.Context, []byte) error {
		return errors.New("decrypt failed")
	}}
	handler := NewNotifyHandler(facade, slog.New(slog.NewTextHandler(io.Discard, nil)))

	resp := performRequest(t, http.MethodPost, "/notify/paySuccess", "/notify/paySuccess",
		handler.PaySuccess, nil, []byte(`{}`))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}

	var out map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["code"] != "FAIL" {
		t.Fatalf("unexpected ack %v", out)
	}
}
