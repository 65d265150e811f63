package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	ListenAddr         string        `env:"LISTEN_ADDR"          envDefault:":8000"`
	DBPath             string        `env:"DB_PATH"              envDefault:"db.sqlite"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL"      envDefault:"https://api.groq.com/openai/v1"`
	OpenAIModel        string        `env:"OPENAI_MODEL"         envDefault:"openai/gpt-oss-120b"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	LLMMinInterval     time.Duration `env:"LLM_MIN_INTERVAL"     envDefault:"0s"`
	Retention          time.Duration `env:"RETENTION"            envDefault:"168h"`
	PruneSpec          string        `env:"PRUNE_SPEC"           envDefault:"0 * * * *"`
}

type ClientConfig struct {
	ServerURL      string        `env:"SERVER_URL"      envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
}

// LoadServer reads an optional .env file and then the process environment.
func LoadServer() (ServerConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ServerConfig{}, err
	}

	return parse[ServerConfig](env.Options{})
}

func LoadClient() (ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ClientConfig{}, err
	}

	return parse[ClientConfig](env.Options{})
}

func parse[T any](opts env.Options) (T, error) {
	cfg, err := env.ParseAsWithOptions[T](opts)
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
