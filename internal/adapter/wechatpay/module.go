package wechatpay

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/feastline/ordercore/internal/config"
)

// Module wires the payment gateway client.
var Module = fx.Provide(
	func(cfg *config.Config, logger *slog.Logger) (*HTTPClient, error) {
		return NewHTTPClient(cfg.PayGatewayAddress, cfg.GatewayTimeout, logger)
	},
	func(client *HTTPClient) Gateway { return client },
)
