package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds concurrency, timeout and normalizer settings.
type PipelineConfig struct {
	Workers           int
	ExtractTimeout    time.Duration
	AnalysisTimeout   time.Duration
	RequestsPerMinute int
	MaxImageEdge      int
	ImageQuality      int
}

// IngestConfig holds the soft limits applied when loading documents.
type IngestConfig struct {
	MaxFiles  int
	MaxFileMB int
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars take precedence.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 3*time.Minute),
		},
		Pipeline: PipelineConfig{
			Workers:           getEnvAsInt("EXTRACT_WORKERS", 4),
			ExtractTimeout:    getEnvAsDuration("EXTRACT_TIMEOUT", 2*time.Minute),
			AnalysisTimeout:   getEnvAsDuration("ANALYSIS_TIMEOUT", 5*time.Minute),
			RequestsPerMinute: getEnvAsInt("REQUESTS_PER_MINUTE", 0),
			MaxImageEdge:      getEnvAsInt("MAX_IMAGE_EDGE", constants.MaxImageEdge),
			ImageQuality:      getEnvAsInt("IMAGE_QUALITY", constants.ImageQuality),
		},
		Ingest: IngestConfig{
			MaxFiles:  getEnvAsInt("MAX_FILES", constants.MaxFilesDefault),
			MaxFileMB: getEnvAsInt("MAX_FILE_MB", constants.MaxFileMBDefault),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks preconditions that must hold before any document is processed.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
		Field("OPENAI_MODEL", c.LLM.Model, Required).
		Field("EXTRACT_WORKERS", c.Pipeline.Workers, Positive).
		Field("MAX_IMAGE_EDGE", c.Pipeline.MaxImageEdge, Positive).
		Field("IMAGE_QUALITY", c.Pipeline.ImageQuality, Between(1, 100)).
		Field("MAX_FILES", c.Ingest.MaxFiles, Positive).
		Field("MAX_FILE_MB", c.Ingest.MaxFileMB, Positive)
	if v.HasErrors() {
		return NewConfigError(v.ErrorMessage())
	}
	return nil
}
