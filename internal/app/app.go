package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/feastline/ordercore/internal/config"
	"github.com/feastline/ordercore/internal/domain/repository"
	"github.com/feastline/ordercore/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewOrderCoreFacade,
		newHTTPServer,
		newSweeper,
		newScheduler,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sweeperParams struct {
	fx.In

	Orders repository.OrderRepository
	Config *config.Config
	Logger *slog.Logger
}

func newSweeper(p sweeperParams) *worker.Sweeper {
	return worker.NewSweeper(p.Orders, p.Config.PaymentGrace, p.Config.DeliveryWindow, p.Logger)
}

type schedulerParams struct {
	fx.In

	Sweeper *worker.Sweeper
	Config  *config.Config
	Logger  *slog.Logger
}

func newScheduler(p schedulerParams) (*worker.Scheduler, error) {
	return worker.NewScheduler(p.Sweeper, p.Config.PaymentSweepSpec, p.Config.DeliverySweepSpec, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Scheduler  *worker.Scheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting ordercore", slog.String("addr", p.Server.Addr))
			p.Scheduler.Start(p.Ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Scheduler.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("ordercore stopped")
			return nil
		},
	})
}
