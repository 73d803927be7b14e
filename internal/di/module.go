package di

import (
	"go.uber.org/fx"

	"github.com/feastline/ordercore/internal/adapter/wechatpay"
	"github.com/feastline/ordercore/internal/app"
	"github.com/feastline/ordercore/internal/config"
	"github.com/feastline/ordercore/internal/logger"
	"github.com/feastline/ordercore/internal/notify"
	"github.com/feastline/ordercore/internal/server/http/handlers"
	"github.com/feastline/ordercore/internal/server/http/router"
	"github.com/feastline/ordercore/internal/storage/postgres"
	"github.com/feastline/ordercore/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		wechatpay.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(f *app.OrderCoreFacade) handlers.OrderCoreFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
