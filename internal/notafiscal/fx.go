package notafiscal

import (
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notafiscal.service",
	fx.Provide(service.NewService),
)
