package treinamento

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/engine"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupWorker(t *testing.T) (*Worker, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&sugdomain.RegistroPredicao{},
		&sugdomain.ExemploTreinamento{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	worker := NewWorker(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Historico: engine.NewHistorico(db, zap.NewNop()),
		Config:    Config{BatchSize: 10, PollInterval: time.Minute},
	})
	return worker, db
}

func seedPredicao(t *testing.T, db *gorm.DB, id snowflake.ID, decidida bool, finalCount *int, features string) {
	t.Helper()
	registro := sugdomain.RegistroPredicao{
		ID:                   id,
		NotaID:               id,
		Features:             []byte(features),
		Fonte:                sugdomain.FonteSimilaridade,
		NumeroCargasSugerido: 2,
		Distribuicao:         []byte(`[0.5,0.5]`),
		Confianca:            0.8,
	}
	if decidida {
		now := time.Now().UTC()
		registro.DecididoEm = &now
		registro.NumeroCargasFinal = finalCount
		registro.DistribuicaoFinal = []byte(`[0.6,0.4]`)
	}
	if err := db.Create(&registro).Error; err != nil {
		t.Fatalf("seed predicao: %v", err)
	}
}

func TestProcessBatchConvertePredicoesDecididas(t *testing.T) {
	worker, db := setupWorker(t)
	dois := 2
	seedPredicao(t, db, 700001, true, &dois, `{"peso_total":500}`)
	seedPredicao(t, db, 700002, false, nil, `{"peso_total":900}`)

	processed, err := worker.processBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 converted record, got %d", processed)
	}

	var exemplos int64
	if err := db.Model(&sugdomain.ExemploTreinamento{}).Where("nota_id = ?", 700001).Count(&exemplos).Error; err != nil {
		t.Fatalf("count exemplos: %v", err)
	}
	if exemplos != 1 {
		t.Fatalf("expected 1 training example, got %d", exemplos)
	}

	var convertida sugdomain.RegistroPredicao
	if err := db.First(&convertida, "id = ?", 700001).Error; err != nil {
		t.Fatalf("load registro: %v", err)
	}
	if !convertida.Convertido {
		t.Fatalf("expected converted record to be marked")
	}

	if worker.historico.Tamanho() != 1 {
		t.Fatalf("expected corpus to gain the example, got %d", worker.historico.Tamanho())
	}
}

func TestProcessBatchIdempotente(t *testing.T) {
	worker, db := setupWorker(t)
	tres := 3
	seedPredicao(t, db, 710001, true, &tres, `{"peso_total":1500}`)

	if _, err := worker.processBatch(context.Background(), 10); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	processed, err := worker.processBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if processed != 0 {
		t.Fatalf("already-converted record picked up again, processed=%d", processed)
	}
}

func TestProcessBatchDescartaRegistrosQuebrados(t *testing.T) {
	worker, db := setupWorker(t)
	quatro := 4
	seedPredicao(t, db, 720001, true, &quatro, `not json`)
	seedPredicao(t, db, 720002, true, nil, `{"peso_total":100}`)

	processed, err := worker.processBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed != 0 {
		t.Fatalf("broken records should not convert, processed=%d", processed)
	}

	// Broken records are consumed, not retried forever.
	var pendentes int64
	if err := db.Model(&sugdomain.RegistroPredicao{}).
		Where("id IN ? AND convertido = ?", []int64{720001, 720002}, false).
		Count(&pendentes).Error; err != nil {
		t.Fatalf("count pendentes: %v", err)
	}
	if pendentes != 0 {
		t.Fatalf("expected broken records marked converted, %d still pending", pendentes)
	}
}
