package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/auditcontext"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/cache"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/config"
	desmdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/desmembramento/domain"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/logger"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/observability/tracing"
	sugestaodomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
)

const notaCacheTTL = 30 * time.Second

type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	notaSvc     notadomain.Service
	desmSvc     desmdomain.Service
	sugestaoSvc sugestaodomain.Service
	modeloSvc   sugestaodomain.ModeloService
	auditSvc    auditdomain.Service

	// notas are immutable after creation, so read caching is safe.
	notaCache *cache.TTLCache[string, *notadomain.NotaFiscal]
}

type Params struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	NotaSvc     notadomain.Service
	DesmSvc     desmdomain.Service
	SugestaoSvc sugestaodomain.Service
	ModeloSvc   sugestaodomain.ModeloService
	AuditSvc    auditdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("server"),
		notaSvc:     p.NotaSvc,
		desmSvc:     p.DesmSvc,
		sugestaoSvc: p.SugestaoSvc,
		modeloSvc:   p.ModeloSvc,
		auditSvc:    p.AuditSvc,
		notaCache:   cache.NewTTLCache[string, *notadomain.NotaFiscal](),
	}
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    log,
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(actorMiddleware())
	return engine
}

// actorMiddleware lifts the actor identity forwarded by the gateway into
// the request context, where the audit trail picks it up.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-Actor-Id")
		if actorID != "" {
			ctx := auditcontext.WithActor(c.Request.Context(), string(auditdomain.ActorTypeUser), actorID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func RegisterAPIRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.POST("/notas", s.CreateNota)
		v1.GET("/notas", s.ListNotas)
		v1.GET("/notas/:id", s.GetNota)
		v1.GET("/notas/:id/cargas", s.ListCargas)
		v1.GET("/notas/:id/sugestao", s.GetSugestao)
		v1.GET("/notas/:id/validacao", s.GetValidacao)
		v1.POST("/notas/:id/desmembramento", s.Desmembrar)

		v1.POST("/cargas/:id/confirmacao", s.ConfirmarCarga)

		v1.POST("/modelos", s.CreateModelo)
		v1.GET("/modelos", s.ListModelos)
		v1.GET("/modelos/ativo", s.GetModeloAtivo)
		v1.POST("/modelos/:id/promocao", s.PromoverModelo)

		v1.GET("/auditoria", s.ListAuditoria)
	}
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(
		NewEngine,
		NewServer,
	),
	fx.Invoke(RegisterAPIRoutes),
	fx.Invoke(RunHTTP),
)
