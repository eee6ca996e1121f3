package sugestao

import (
	"context"

	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/engine"
	"go.uber.org/fx"
)

var Module = fx.Module("sugestao.service",
	fx.Provide(engine.NewHistorico),
	fx.Provide(engine.NewRegistry),
	fx.Provide(engine.NewEngine),
	fx.Provide(func(r *engine.Registry) sugdomain.ModeloService { return r }),
	fx.Invoke(carregarEstado),
)

// carregarEstado warms the history index and active model before the
// server starts taking suggestion traffic.
func carregarEstado(lc fx.Lifecycle, historico *engine.Historico, registry *engine.Registry) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := historico.Carregar(ctx); err != nil {
				return err
			}
			return registry.Carregar(ctx)
		},
	})
}
