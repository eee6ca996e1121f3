package engine

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pontoComDesigner/dashboardlogcar-sub001/internal/features"
	sugdomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/sugestao/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Exemplo is one in-memory corpus entry used for similarity lookups.
type Exemplo struct {
	Vetor        features.Vetor
	NumeroCargas int
	Distribuicao []float64
}

// Vizinho pairs a corpus entry with its distance to a query vector.
type Vizinho struct {
	Exemplo   Exemplo
	Distancia float64
}

// Historico keeps the labeled corpus in memory. Readers take an atomic
// snapshot so similarity lookups never block behind appends; writers are
// serialized and swap a fresh slice in.
type Historico struct {
	db  *gorm.DB
	log *zap.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[[]Exemplo]
}

func NewHistorico(db *gorm.DB, log *zap.Logger) *Historico {
	h := &Historico{db: db, log: log.Named("sugestao.historico")}
	empty := make([]Exemplo, 0)
	h.snapshot.Store(&empty)
	return h
}

// Carregar rebuilds the in-memory corpus from the exemplos_treinamento
// table. Rows with malformed payloads are skipped, not fatal.
func (h *Historico) Carregar(ctx context.Context) error {
	var rows []sugdomain.ExemploTreinamento
	if err := h.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return err
	}

	exemplos := make([]Exemplo, 0, len(rows))
	for _, row := range rows {
		exemplo, err := exemploFromRow(row)
		if err != nil {
			h.log.Warn("skipping malformed training example",
				zap.String("exemplo_id", row.ID.String()),
				zap.Error(err),
			)
			continue
		}
		exemplos = append(exemplos, exemplo)
	}

	h.mu.Lock()
	h.snapshot.Store(&exemplos)
	h.mu.Unlock()

	h.log.Info("history index loaded", zap.Int("exemplos", len(exemplos)))
	return nil
}

// Append adds confirmed examples to the corpus without blocking readers.
func (h *Historico) Append(novos ...Exemplo) {
	if len(novos) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	atual := *h.snapshot.Load()
	proximo := make([]Exemplo, 0, len(atual)+len(novos))
	proximo = append(proximo, atual...)
	proximo = append(proximo, novos...)
	h.snapshot.Store(&proximo)
}

func (h *Historico) Tamanho() int {
	return len(*h.snapshot.Load())
}

// Snapshot returns the current corpus view. Callers must not mutate it.
func (h *Historico) Snapshot() []Exemplo {
	return *h.snapshot.Load()
}

// Vizinhos returns the k corpus entries closest to the query vector,
// ordered by ascending distance. Ties resolve by insertion order so the
// result is deterministic.
func (h *Historico) Vizinhos(vetor features.Vetor, k int) []Vizinho {
	exemplos := *h.snapshot.Load()
	if len(exemplos) == 0 || k <= 0 {
		return nil
	}

	vizinhos := make([]Vizinho, len(exemplos))
	for i, exemplo := range exemplos {
		vizinhos[i] = Vizinho{
			Exemplo:   exemplo,
			Distancia: features.Distancia(vetor, exemplo.Vetor),
		}
	}
	sort.SliceStable(vizinhos, func(i, j int) bool {
		return vizinhos[i].Distancia < vizinhos[j].Distancia
	})

	if k > len(vizinhos) {
		k = len(vizinhos)
	}
	return vizinhos[:k]
}

func exemploFromRow(row sugdomain.ExemploTreinamento) (Exemplo, error) {
	var vetor features.Vetor
	if err := json.Unmarshal(row.Features, &vetor); err != nil {
		return Exemplo{}, err
	}
	var distribuicao []float64
	if len(row.Distribuicao) > 0 {
		if err := json.Unmarshal(row.Distribuicao, &distribuicao); err != nil {
			return Exemplo{}, err
		}
	}
	return Exemplo{
		Vetor:        vetor,
		NumeroCargas: row.NumeroCargas,
		Distribuicao: distribuicao,
	}, nil
}
