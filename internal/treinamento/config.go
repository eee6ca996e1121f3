package treinamento

import "time"

const defaultEvalTimeout = 2 * time.Minute

// Config controls the training pipeline loop.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	// CronSpec schedules the corpus rebuild and model evaluation pass.
	CronSpec string
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    50,
		PollInterval: 5 * time.Second,
		CronSpec:     "0 3 * * *",
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.CronSpec == "" {
		c.CronSpec = defaults.CronSpec
	}
	return c
}
