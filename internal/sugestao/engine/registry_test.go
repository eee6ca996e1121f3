package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditrepo "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/repository"
	auditservice "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/service"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/events"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
)

func setupRegistry(t *testing.T) (*Registry, *gorm.DB) {
	t.Helper()
	db := setupEngineTestDB(t)
	if err := db.AutoMigrate(&auditdomain.RegistroAuditoria{}); err != nil {
		t.Fatalf("migrate auditoria: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS eventos (
			id INTEGER PRIMARY KEY,
			tipo TEXT NOT NULL,
			payload TEXT NOT NULL,
			dedupe_key TEXT UNIQUE,
			publicado BOOLEAN NOT NULL DEFAULT false,
			created_at DATETIME NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create eventos: %v", err)
	}

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	audit := auditservice.NewService(auditservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
	})

	registry := NewRegistry(RegistryParam{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Audit:  audit,
		Outbox: events.NewOutbox(db, node),
	})
	return registry, db
}

func pesosValidos() map[string]any {
	pesos := make([]any, len(features.Vetor{}.Coordenadas()))
	for i := range pesos {
		pesos[i] = 0.0
	}
	return map[string]any{"pesos": pesos, "vies": 2.0}
}

func TestRegistryCriarValidaDescritor(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	if _, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Algoritmo: AlgoritmoLinear}); !errors.Is(err, sugdomain.ErrVersaoObrigatoria) {
		t.Fatalf("expected ErrVersaoObrigatoria, got %v", err)
	}
	if _, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Versao: "v1", Algoritmo: "rede"}); !errors.Is(err, sugdomain.ErrAlgoritmoInvalido) {
		t.Fatalf("expected ErrAlgoritmoInvalido, got %v", err)
	}
	if _, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Versao: "v1", Algoritmo: AlgoritmoLinear, Parametros: map[string]any{"pesos": []any{}}}); !errors.Is(err, sugdomain.ErrParametrosInvalidos) {
		t.Fatalf("expected ErrParametrosInvalidos, got %v", err)
	}
}

func TestRegistryPromoverTrocaModeloAtivo(t *testing.T) {
	registry, db := setupRegistry(t)
	ctx := context.Background()

	primeiro, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Versao: "v1-test-a", Algoritmo: AlgoritmoLinear, Parametros: pesosValidos()})
	if err != nil {
		t.Fatalf("criar primeiro: %v", err)
	}
	segundo, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Versao: "v2-test-a", Algoritmo: AlgoritmoLinear, Parametros: pesosValidos()})
	if err != nil {
		t.Fatalf("criar segundo: %v", err)
	}

	if _, err := registry.Promover(ctx, primeiro.ID.String()); err != nil {
		t.Fatalf("promover primeiro: %v", err)
	}
	if ativo := registry.Ativa(); ativo == nil || ativo.Descritor.ID != primeiro.ID {
		t.Fatalf("expected first model active in memory")
	}

	if _, err := registry.Promover(ctx, segundo.ID.String()); err != nil {
		t.Fatalf("promover segundo: %v", err)
	}
	if ativo := registry.Ativa(); ativo == nil || ativo.Descritor.ID != segundo.ID {
		t.Fatalf("expected second model active in memory")
	}

	var ativos int64
	if err := db.Model(&sugdomain.ModeloDescritor{}).Where("ativo = ?", true).Count(&ativos).Error; err != nil {
		t.Fatalf("count ativos: %v", err)
	}
	if ativos != 1 {
		t.Fatalf("expected exactly one active row, got %d", ativos)
	}
}

func TestRegistryPromoverModeloInexistente(t *testing.T) {
	registry, _ := setupRegistry(t)

	if _, err := registry.Promover(context.Background(), "999999999999"); !errors.Is(err, sugdomain.ErrModeloNotFound) {
		t.Fatalf("expected ErrModeloNotFound, got %v", err)
	}
	if _, err := registry.Promover(context.Background(), "not-an-id"); !errors.Is(err, sugdomain.ErrInvalidModeloID) {
		t.Fatalf("expected ErrInvalidModeloID, got %v", err)
	}
}

func TestRegistryAtivoSemModeloPromovido(t *testing.T) {
	registry, _ := setupRegistry(t)

	if _, err := registry.Ativo(context.Background()); !errors.Is(err, sugdomain.ErrModeloIndisponivel) {
		t.Fatalf("expected ErrModeloIndisponivel, got %v", err)
	}
}

func TestRegistryAtivoDevolvePromovido(t *testing.T) {
	registry, _ := setupRegistry(t)
	ctx := context.Background()

	modelo, err := registry.Criar(ctx, sugdomain.CriarModeloRequest{Versao: "v1-test-b", Algoritmo: AlgoritmoLinear, Parametros: pesosValidos()})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if _, err := registry.Promover(ctx, modelo.ID.String()); err != nil {
		t.Fatalf("promover: %v", err)
	}

	ativo, err := registry.Ativo(ctx)
	if err != nil {
		t.Fatalf("ativo: %v", err)
	}
	if ativo.ID != modelo.ID || !ativo.Ativo {
		t.Fatalf("expected promoted model as active, got %+v", ativo)
	}
}
