package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	OCR      OCRConfig
	Vision   VisionConfig
	Cache    CacheConfig
	Pipeline PipelineConfig
	Store    StoreConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// OCRConfig holds local OCR configuration
type OCRConfig struct {
	Languages    string
	TessdataDir  string
	PdftoppmBin  string
	PDFRenderDPI int
}

// VisionConfig holds vision-model configuration
type VisionConfig struct {
	Model           string
	APIKey          string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// CacheConfig holds extraction-cache configuration
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

// PipelineConfig holds engine selection and concurrency configuration
type PipelineConfig struct {
	PrimaryEngine   string
	FallbackEnabled bool
	Concurrency     int64
	MaxRetries      int
	RetryDelay      time.Duration
}

// StoreConfig holds the optional record-archive configuration
type StoreConfig struct {
	DSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Minute),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Languages:    getEnv("TESSERACT_LANGS", "eng+ind"),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			PdftoppmBin:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			PDFRenderDPI: getEnvAsInt("PDF_RENDER_DPI", 200),
		},
		Vision: VisionConfig{
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Temperature:     getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 4096),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Cache: CacheConfig{
			MaxSize: getEnvAsInt("OCR_CACHE_MAX_SIZE", 100),
			TTL:     getEnvAsDuration("OCR_CACHE_TTL", time.Hour),
		},
		Pipeline: PipelineConfig{
			PrimaryEngine:   strings.ToLower(getEnv("OCR_PRIMARY_ENGINE", "gemini")),
			FallbackEnabled: getEnvAsBool("OCR_FALLBACK_ENABLED", true),
			Concurrency:     int64(getEnvAsInt("OCR_CONCURRENCY", 10)),
			MaxRetries:      getEnvAsInt("OCR_MAX_RETRIES", 2),
			RetryDelay:      getEnvAsDuration("OCR_RETRY_DELAY", time.Second),
		},
		Store: StoreConfig{
			DSN: getEnv("DATABASE_URL", ""),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Pipeline.PrimaryEngine {
	case "gemini", "tesseract", "hybrid":
	default:
		return NewAppError("CONFIG_ERROR", "OCR_PRIMARY_ENGINE must be gemini, tesseract, or hybrid", ErrInvalidInput)
	}
	if c.Pipeline.PrimaryEngine != "tesseract" && c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for the "+c.Pipeline.PrimaryEngine+" engine", ErrInvalidInput)
	}
	if c.Pipeline.Concurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_CONCURRENCY must be positive", ErrInvalidInput)
	}
	if c.Cache.MaxSize <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_CACHE_MAX_SIZE must be positive", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
