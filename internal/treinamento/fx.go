package treinamento

import (
	"context"

	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("treinamento",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			BatchSize:    cfg.Engine.TreinamentoBatchSize,
			PollInterval: cfg.Engine.TreinamentoPollInterval,
			CronSpec:     cfg.Engine.TreinamentoCronSpec,
		}
	}),
	fx.Provide(NewWorker),
	fx.Provide(NewAvaliador),
	fx.Invoke(runWorker),
	fx.Invoke(runCron),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	// The OnStart context only covers startup; the loop gets its own
	// lifetime, canceled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// runCron schedules the nightly corpus rebuild and model evaluation.
func runCron(lc fx.Lifecycle, cfg Config, avaliador *Avaliador, log *zap.Logger) error {
	scheduler := cron.New()
	spec := cfg.withDefaults().CronSpec
	if _, err := scheduler.AddJob(spec, avaliador); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			scheduler.Start()
			log.Info("training cron started", zap.String("spec", spec))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := scheduler.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
