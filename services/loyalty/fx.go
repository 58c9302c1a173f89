package loyalty

import (
	"context"

	"scaleplus-loyalty/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("loyalty.service",
	fx.Provide(
		provideKeys,
		NewStore,
		NewService,
	),
	fx.Invoke(registerLifecycle),
)

func provideKeys(cfg *config.Config) Keys {
	return NewKeys(cfg.Storage.Namespace)
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Store     *Store
	Service   *Service
}

// registerLifecycle loads persisted state before the app starts serving,
// moves the clock past the stored ledger and brings stale tier ids in line
// with the configured table.
func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Store.Load(ctx); err != nil {
				zap.L().Error("failed to load loyalty state", zap.Error(err))
				return err
			}
			p.Service.Ledger.SyncClock()
			if _, err := p.Service.Reconcile(ctx); err != nil {
				zap.L().Error("failed to reconcile tiers", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
