package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/feastline/ordercore/internal/adapter/wechatpay"
	"github.com/feastline/ordercore/internal/config"
	"github.com/feastline/ordercore/internal/domain/repository"
	"github.com/feastline/ordercore/internal/notify"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	func(hub *notify.Hub) Broadcaster { return hub },
	NewOrderUseCase,
	func(orders repository.OrderRepository, gateway wechatpay.Gateway, hub Broadcaster, cfg *config.Config, logger *slog.Logger) *PaymentUseCase {
		return NewPaymentUseCase(orders, gateway, hub, []byte(cfg.PayAPIKey), logger)
	},
)
