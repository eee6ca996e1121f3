package treinamento

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/domain"
	auditrepo "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/repository"
	auditservice "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/audit/service"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/engine"
	"go.uber.org/zap"
)

func modeloConstante(t *testing.T, vies float64) *engine.ModeloAtivo {
	t.Helper()
	pesos := make([]float64, len(features.Vetor{}.Coordenadas()))
	parametros, err := json.Marshal(map[string]any{"pesos": pesos, "vies": vies})
	if err != nil {
		t.Fatalf("marshal parametros: %v", err)
	}
	inferencia, err := engine.NovaInferencia(sugdomain.ModeloDescritor{
		Algoritmo:  engine.AlgoritmoLinear,
		Parametros: parametros,
	})
	if err != nil {
		t.Fatalf("nova inferencia: %v", err)
	}
	return &engine.ModeloAtivo{Inferencia: inferencia}
}

func TestAvaliarModeloPerfeito(t *testing.T) {
	historico := engine.NewHistorico(nil, zap.NewNop())
	historico.Append(
		engine.Exemplo{NumeroCargas: 2},
		engine.Exemplo{NumeroCargas: 2},
		engine.Exemplo{NumeroCargas: 2},
	)
	a := &Avaliador{log: zap.NewNop(), historico: historico}

	resultado := a.avaliar(modeloConstante(t, 2))
	if resultado.acuracia != 1 {
		t.Fatalf("expected perfect accuracy, got %v", resultado.acuracia)
	}
	if resultado.f1 != 1 {
		t.Fatalf("expected perfect f1, got %v", resultado.f1)
	}
}

func TestAvaliarModeloParcial(t *testing.T) {
	historico := engine.NewHistorico(nil, zap.NewNop())
	historico.Append(
		engine.Exemplo{NumeroCargas: 3},
		engine.Exemplo{NumeroCargas: 3},
		engine.Exemplo{NumeroCargas: 5},
		engine.Exemplo{NumeroCargas: 5},
	)
	a := &Avaliador{log: zap.NewNop(), historico: historico}

	// A constant model predicting 3 hits half the corpus.
	resultado := a.avaliar(modeloConstante(t, 3))
	if resultado.acuracia != 0.5 {
		t.Fatalf("expected accuracy 0.5, got %v", resultado.acuracia)
	}
	if resultado.precisao >= 1 || resultado.precisao <= 0 {
		t.Fatalf("expected partial macro precision, got %v", resultado.precisao)
	}
	if resultado.recall >= 1 || resultado.recall <= 0 {
		t.Fatalf("expected partial macro recall, got %v", resultado.recall)
	}
}

func TestRunOnceMarcaExemplosConsumidos(t *testing.T) {
	_, db := setupWorker(t)
	if err := db.AutoMigrate(&auditdomain.RegistroAuditoria{}); err != nil {
		t.Fatalf("migrate auditoria: %v", err)
	}
	node, err := snowflake.NewNode(8)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	audit := auditservice.NewService(auditservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepo.Provide(),
	})
	a := &Avaliador{
		db:        db,
		log:       zap.NewNop(),
		historico: engine.NewHistorico(db, zap.NewNop()),
		registry:  &engine.Registry{},
		audit:     audit,
	}

	seedExemplo := func(id snowflake.ID) {
		exemplo := sugdomain.ExemploTreinamento{
			ID:           id,
			NotaID:       id,
			Features:     []byte(`{"peso_total":400}`),
			NumeroCargas: 2,
			Distribuicao: []byte(`[0.5,0.5]`),
			Fonte:        sugdomain.FonteSimilaridade,
		}
		if err := db.Create(&exemplo).Error; err != nil {
			t.Fatalf("seed exemplo: %v", err)
		}
	}
	seedExemplo(740001)
	seedExemplo(740002)

	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	var pendentes int64
	if err := db.Model(&sugdomain.ExemploTreinamento{}).
		Where("id IN ?", []snowflake.ID{740001, 740002}).
		Where("consumido_treino = ?", false).
		Count(&pendentes).Error; err != nil {
		t.Fatalf("count pendentes: %v", err)
	}
	if pendentes != 0 {
		t.Fatalf("expected rebuilt corpus examples marked consumed, %d still pending", pendentes)
	}

	// A later example stays pending until the next pass.
	seedExemplo(740003)
	var depois sugdomain.ExemploTreinamento
	if err := db.First(&depois, "id = ?", 740003).Error; err != nil {
		t.Fatalf("load exemplo: %v", err)
	}
	if depois.ConsumidoTreino {
		t.Fatalf("expected fresh example unconsumed")
	}
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if err := db.First(&depois, "id = ?", 740003).Error; err != nil {
		t.Fatalf("reload exemplo: %v", err)
	}
	if !depois.ConsumidoTreino {
		t.Fatalf("expected second pass to consume the fresh example")
	}
}
