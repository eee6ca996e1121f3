package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/clock"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/config"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/events"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/migration"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/logger"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/tracing"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/server"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/treinamento"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		events.Module,
		audit.Module,
		notafiscal.Module,
		sugestao.Module,
		desmembramento.Module,
		treinamento.Module,
		server.Module,
	)
	app.Run()
}
