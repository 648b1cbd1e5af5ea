// Package janitor runs periodic cleanup: expired pending orders, lapsed
// purchases, and dead sessions.
package janitor

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/telestore/telestore/internal/config"
	paymentdomain "github.com/telestore/telestore/internal/payment/domain"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"github.com/telestore/telestore/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Settings  *config.SettingsHolder
	Payments  paymentdomain.Service
	Purchases purchasedomain.Service
	Sessions  *session.Store
}

type Janitor struct {
	log       *zap.Logger
	settings  *config.SettingsHolder
	payments  paymentdomain.Service
	purchases purchasedomain.Service
	sessions  *session.Store
}

func New(p Params) *Janitor {
	return &Janitor{
		log:       p.Log.Named("janitor"),
		settings:  p.Settings,
		payments:  p.Payments,
		purchases: p.Purchases,
		sessions:  p.Sessions,
	}
}

// Sweep runs one cleanup cycle. Each job is independent; one failing does not
// block the others.
func (j *Janitor) Sweep(ctx context.Context) {
	settings := j.settings.Get()

	ttl := time.Duration(settings.PendingOrderTTL) * time.Second
	if dropped := j.payments.SweepExpired(ttl); dropped > 0 {
		j.log.Info("dropped stale pending orders", zap.Int("count", dropped))
	}

	if n, err := j.purchases.DeactivateExpired(ctx); err != nil {
		j.log.Error("purchase expiry sweep failed", zap.Error(err))
	} else if n > 0 {
		j.log.Info("deactivated expired purchases", zap.Int64("count", n))
	}

	if n, err := j.sessions.DeleteExpired(ctx); err != nil {
		j.log.Error("session sweep failed", zap.Error(err))
	} else if n > 0 {
		j.log.Info("deleted expired sessions", zap.Int64("count", n))
	}
}

var Module = fx.Module("janitor",
	fx.Provide(New),
	fx.Invoke(Run),
)

// Run schedules the janitor on the configured cron spec for the process
// lifetime.
func Run(lc fx.Lifecycle, j *Janitor) {
	spec := j.settings.Get().JanitorCronSpec

	c := cron.New()
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if _, err := c.AddFunc(spec, func() { j.Sweep(ctx) }); err != nil {
				cancel()
				return err
			}
			c.Start()
			j.log.Info("janitor scheduled", zap.String("spec", spec))
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			stop := c.Stop()
			<-stop.Done()
			return nil
		},
	})
}
