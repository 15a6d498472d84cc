package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/quizterra.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// Question-generation collaborator.
	QuestionServiceURL     string        `env:"QUESTION_SERVICE_URL" envDefault:"http://localhost:8090/generate"`
	QuestionServiceModel   string        `env:"QUESTION_SERVICE_MODEL" envDefault:"default"`
	QuestionServiceTimeout time.Duration `env:"QUESTION_SERVICE_TIMEOUT" envDefault:"30s"`
	QuestionCount          int           `env:"QUESTION_COUNT" envDefault:"10"`

	SeedDemo bool `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
