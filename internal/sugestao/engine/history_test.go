package engine

import (
	"context"
	"testing"

	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEngineTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&sugdomain.ExemploTreinamento{},
		&sugdomain.RegistroPredicao{},
		&sugdomain.ModeloDescritor{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestHistoricoVizinhosOrdenadosPorDistancia(t *testing.T) {
	historico := NewHistorico(nil, zap.NewNop())
	historico.Append(
		Exemplo{Vetor: features.Vetor{PesoTotal: 100}, NumeroCargas: 1},
		Exemplo{Vetor: features.Vetor{PesoTotal: 10000}, NumeroCargas: 3},
		Exemplo{Vetor: features.Vetor{PesoTotal: 120}, NumeroCargas: 1},
	)

	consulta := features.Vetor{PesoTotal: 110}
	vizinhos := historico.Vizinhos(consulta, 2)
	if len(vizinhos) != 2 {
		t.Fatalf("expected 2 vizinhos, got %d", len(vizinhos))
	}
	if vizinhos[0].Distancia > vizinhos[1].Distancia {
		t.Fatalf("vizinhos out of order: %v then %v", vizinhos[0].Distancia, vizinhos[1].Distancia)
	}
	if vizinhos[0].Exemplo.NumeroCargas != 1 {
		t.Fatalf("expected nearest exemplo with 1 carga, got %d", vizinhos[0].Exemplo.NumeroCargas)
	}
}

func TestHistoricoVizinhosComKMaiorQueCorpus(t *testing.T) {
	historico := NewHistorico(nil, zap.NewNop())
	historico.Append(Exemplo{Vetor: features.Vetor{ValorTotal: 50}, NumeroCargas: 1})

	vizinhos := historico.Vizinhos(features.Vetor{ValorTotal: 60}, 5)
	if len(vizinhos) != 1 {
		t.Fatalf("expected corpus-bounded result, got %d", len(vizinhos))
	}
}

func TestHistoricoVazioSemVizinhos(t *testing.T) {
	historico := NewHistorico(nil, zap.NewNop())
	if vizinhos := historico.Vizinhos(features.Vetor{}, 5); vizinhos != nil {
		t.Fatalf("expected nil for empty corpus, got %v", vizinhos)
	}
}

func TestHistoricoCarregarIgnoraLinhasCorrempidas(t *testing.T) {
	db := setupEngineTestDB(t)
	insere := []sugdomain.ExemploTreinamento{
		{ID: 9001, NotaID: 1, Features: []byte(`{"peso_total":500}`), NumeroCargas: 2, Distribuicao: []byte(`[0.5,0.5]`), Fonte: sugdomain.FonteSimilaridade},
		{ID: 9002, NotaID: 2, Features: []byte(`not json`), NumeroCargas: 3, Distribuicao: []byte(`[]`), Fonte: sugdomain.FonteHeuristica},
	}
	for i := range insere {
		if err := db.Create(&insere[i]).Error; err != nil {
			t.Fatalf("seed exemplo: %v", err)
		}
	}

	historico := NewHistorico(db, zap.NewNop())
	if err := historico.Carregar(context.Background()); err != nil {
		t.Fatalf("carregar: %v", err)
	}
	if historico.Tamanho() != 1 {
		t.Fatalf("expected 1 usable exemplo, got %d", historico.Tamanho())
	}
}
