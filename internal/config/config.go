package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config carries every runtime setting for the service. Values come from the
// environment; a local .env file is honored outside production.
type Config struct {
	Environment string
	HTTPAddr    string

	Database DatabaseConfig
	Engine   EngineConfig
	Tracing  TracingConfig
}

type DatabaseConfig struct {
	DSN string
}

// EngineConfig tunes the suggestion and allocation engines.
type EngineConfig struct {
	// VizinhosK is the number of nearest historical examples consulted
	// per suggestion.
	VizinhosK int
	// PesoMaximoPorCarga feeds the heuristic fallback when the history
	// index is empty (kg).
	PesoMaximoPorCarga float64
	// ToleranciaDivergencia is the accepted divergence between the nota
	// total and the summed carga totals, in percent.
	ToleranciaDivergencia float64
	// CategoriasEspeciais lists category codes treated as special/fragile
	// by the feature extractor.
	CategoriasEspeciais []string

	TreinamentoBatchSize    int
	TreinamentoPollInterval time.Duration
	// TreinamentoCronSpec schedules the nightly corpus rebuild and model
	// evaluation pass.
	TreinamentoCronSpec string
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	env := getenv("APP_ENV", "development")
	if !strings.EqualFold(env, "production") {
		// Best effort; a missing .env is not an error.
		_ = godotenv.Load()
	}

	cfg := Config{
		Environment: env,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Database: DatabaseConfig{
			DSN: getenv("DATABASE_DSN", "postgres://localhost:5432/logcar?sslmode=disable"),
		},
		Engine: EngineConfig{
			VizinhosK:               getenvInt("ENGINE_VIZINHOS_K", 5),
			PesoMaximoPorCarga:      getenvFloat("ENGINE_PESO_MAXIMO_POR_CARGA", 12000),
			ToleranciaDivergencia:   getenvFloat("ENGINE_TOLERANCIA_DIVERGENCIA", 0.01),
			CategoriasEspeciais:     getenvList("ENGINE_CATEGORIAS_ESPECIAIS", []string{"FRAGIL", "QUIMICO", "REFRIGERADO"}),
			TreinamentoBatchSize:    getenvInt("TREINAMENTO_BATCH_SIZE", 50),
			TreinamentoPollInterval: getenvDuration("TREINAMENTO_POLL_INTERVAL", 5*time.Second),
			TreinamentoCronSpec:     getenv("TREINAMENTO_CRON_SPEC", "0 3 * * *"),
		},
		Tracing: TracingConfig{
			Enabled:          getenvBool("TRACING_ENABLED", false),
			ExporterEndpoint: getenv("TRACING_EXPORTER_ENDPOINT", "localhost:4318"),
			ExporterProtocol: getenv("TRACING_EXPORTER_PROTOCOL", "http"),
			SamplingRatio:    getenvFloat("TRACING_SAMPLING_RATIO", 1.0),
		},
	}
	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getenvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getenvList(key string, fallback []string) []string {
	raw := getenv(key, "")
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
