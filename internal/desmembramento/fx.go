package desmembramento

import (
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/service"
	"go.uber.org/fx"
)

var Module = fx.Module("desmembramento.service",
	fx.Provide(service.NewService),
)
