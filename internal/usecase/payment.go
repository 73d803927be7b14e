package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/feastline/ordercore/internal/adapter/wechatpay"
	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

const payDescription = "Feastline takeout order"

// PaymentUseCase drives the interactive submit-then-pay path and reconciles
// the asynchronous payment-gateway callback.
type PaymentUseCase struct {
	orders  repository.OrderRepository
	gateway wechatpay.Gateway
	hub     Broadcaster
	apiKey  []byte
	logger  *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(
	orders repository.OrderRepository,
	gateway wechatpay.Gateway,
	hub Broadcaster,
	apiKey []byte,
	logger *slog.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		orders:  orders,
		gateway: gateway,
		hub:     hub,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// RequestPayment obtains a client-presentable payment intent for the order.
// An order that is already paid is rejected instead of re-issuing an intent.
func (u *PaymentUseCase) RequestPayment(ctx context.Context, userID int64, orderNumber string) (*model.PaymentIntent, error) {
	order, err := u.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrOrderNotFound
	}
	if order.PayStatus == model.PayStatusPaid {
		return nil, domainErrors.ErrAlreadyPaid
	}

	return u.gateway.Pay(ctx, order.Number, order.Amount, payDescription)
}

type callbackEnvelope struct {
	Resource wechatpay.Resource `json:"resource"`
}

type callbackPayload struct {
	OutTradeNo    string `json:"out_trade_no"`
	TransactionID string `json:"transaction_id"`
}

// ApplyCallback processes one asynchronous gateway notification. The paid
// transition is idempotent: a redelivered envelope is a success no-op and
// emits no second notification.
func (u *PaymentUseCase) ApplyCallback(ctx context.Context, raw []byte) error {
	var envelope callbackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", domainErrors.ErrCallbackDecryption, err)
	}

	plaintext, err := wechatpay.DecryptResource(u.apiKey, envelope.Resource)
	if err != nil {
		return err
	}

	var payload callbackPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return fmt.Errorf("%w: decode payload: %v", domainErrors.ErrCallbackDecryption, err)
	}
	if payload.OutTradeNo == "" {
		return fmt.Errorf("%w: missing out_trade_no", domainErrors.ErrCallbackDecryption)
	}

	order, err := u.orders.GetByNumber(ctx, payload.OutTradeNo)
	if err != nil {
		return err
	}
	if order.PayStatus == model.PayStatusPaid {
		u.logger.Info("duplicate payment callback ignored",
			slog.String("order", order.Number),
			slog.String("transaction", payload.TransactionID),
		)
		return nil
	}

	now := time.Now()
	paid := model.PayStatusPaid
	unpaid := model.PayStatusUnpaid
	err = u.orders.ApplyTransition(ctx, repository.StatusTransition{
		OrderID:           order.ID,
		ExpectedStatus:    model.OrderStatusPendingPayment,
		ExpectedPayStatus: &unpaid,
		Status:            model.OrderStatusToBeConfirmed,
		PayStatus:         &paid,
		CheckoutTime:      &now,
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrConflict) {
			return err
		}
		// Lost the race: a concurrent delivery of the same callback may have
		// applied the transition already. Re-read before deciding.
		current, rerr := u.orders.GetByID(ctx, order.ID)
		if rerr != nil {
			return rerr
		}
		if current.PayStatus == model.PayStatusPaid {
			return nil
		}
		return err
	}

	u.logger.Info("payment received",
		slog.String("order", order.Number),
		slog.String("transaction", payload.TransactionID),
	)
	u.hub.Broadcast(model.Notification{
		Kind:    model.NotificationPaymentReceived,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}
