package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every metric with service identity.
type Config struct {
	ServiceName string
	Environment string
}

// EngineMetrics tracks the suggestion, allocation and training pipelines.
type EngineMetrics struct {
	sugestoesServidas     *prometheus.CounterVec
	sugestaoConfianca     prometheus.Histogram
	desmembramentosTotal  *prometheus.CounterVec
	divergenciaPercentual prometheus.Histogram
	treinamentoBacklog    prometheus.Gauge
	exemplosConvertidos   *prometheus.CounterVec
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

func ResetEngineMetricsForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "logcar"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	sugestoesServidas := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "logcar_sugestoes_servidas_total",
			Help:        "Total suggestions served by source.",
			ConstLabels: constLabels,
		},
		[]string{"fonte"}, // similaridade | modelo | heuristica
	)

	sugestaoConfianca := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "logcar_sugestao_confianca",
			Help:        "Confidence distribution of served suggestions.",
			Buckets:     []float64{0.1, 0.2, 0.3, 0.5, 0.7, 0.85, 0.95, 1},
			ConstLabels: constLabels,
		},
	)

	desmembramentosTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "logcar_desmembramentos_total",
			Help:        "Total allocation attempts by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | rejected | already_split
	)

	divergenciaPercentual := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "logcar_divergencia_percentual",
			Help:        "Percent divergence between nota and summed carga totals.",
			Buckets:     []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 1},
			ConstLabels: constLabels,
		},
	)

	treinamentoBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "logcar_treinamento_backlog_total",
			Help:        "Prediction records awaiting conversion into training examples.",
			ConstLabels: constLabels,
		},
	)

	exemplosConvertidos := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "logcar_exemplos_convertidos_total",
			Help:        "Prediction records converted into training examples.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | skipped | failed
	)

	registerer.MustRegister(
		sugestoesServidas,
		sugestaoConfianca,
		desmembramentosTotal,
		divergenciaPercentual,
		treinamentoBacklog,
		exemplosConvertidos,
	)

	return &EngineMetrics{
		sugestoesServidas:     sugestoesServidas,
		sugestaoConfianca:     sugestaoConfianca,
		desmembramentosTotal:  desmembramentosTotal,
		divergenciaPercentual: divergenciaPercentual,
		treinamentoBacklog:    treinamentoBacklog,
		exemplosConvertidos:   exemplosConvertidos,
	}
}

func (m *EngineMetrics) IncSugestaoServida(fonte string, confianca float64) {
	if m == nil {
		return
	}
	m.sugestoesServidas.WithLabelValues(fonte).Inc()
	m.sugestaoConfianca.Observe(confianca)
}

func (m *EngineMetrics) IncDesmembramento(result string) {
	if m == nil {
		return
	}
	m.desmembramentosTotal.WithLabelValues(result).Inc()
}

func (m *EngineMetrics) ObserveDivergencia(percentual float64) {
	if m == nil {
		return
	}
	if percentual < 0 {
		percentual = 0
	}
	m.divergenciaPercentual.Observe(percentual)
}

func (m *EngineMetrics) SetTreinamentoBacklog(value int) {
	if m == nil {
		return
	}
	m.treinamentoBacklog.Set(float64(value))
}

func (m *EngineMetrics) IncExemploConvertido(result string) {
	if m == nil {
		return
	}
	m.exemplosConvertidos.WithLabelValues(result).Inc()
}
