package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	Environment string `yaml:"environment"`

	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	GitHub   GitHubConfig   `yaml:"github"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Redis    RedisConfig    `yaml:"redis"`
}

// HTTPConfig configures the API listener. ReadHeaderTimeout bounds the
// request headers; ReadTimeout covers the whole upload body and must allow a
// full-size clip on a slow link.
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              string        `yaml:"port"`
	PublicBaseURL     string        `yaml:"public_base_url"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	SecureCookies     bool          `yaml:"secure_cookies"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// OpenAIConfig configures both the speech-to-text and the enhancement clients.
type OpenAIConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	WhisperModel   string        `yaml:"whisper_model"`
	EnhanceModel   string        `yaml:"enhance_model"`
	Language       string        `yaml:"language"`
	STTTimeout     time.Duration `yaml:"stt_timeout"`
	EnhanceTimeout time.Duration `yaml:"enhance_timeout"`
}

// GitHubConfig holds the OAuth application credentials.
type GitHubConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// MinIOConfig enables the raw audio archive when Endpoint is set.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// RedisConfig enables the session lookup cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Environment: "development",
		HTTP: HTTPConfig{
			Host:              "",
			Port:              "8080",
			PublicBaseURL:     "http://localhost:8080",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Minute,
			WriteTimeout:      15 * time.Minute,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "data/voicenote.db",
		},
		OpenAI: OpenAIConfig{
			WhisperModel:   "whisper-1",
			EnhanceModel:   "gpt-4o-mini",
			Language:       "en",
			STTTimeout:     120 * time.Second,
			EnhanceTimeout: 60 * time.Second,
		},
		MinIO: MinIOConfig{
			Bucket: "voicenote-audio",
			Region: "us-east-1",
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// LoadEnv loads environment variables from .env file if it exists
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// LoadFile merges a YAML config file over cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration: defaults, then the optional YAML file, then
// the environment (including .env).
func Load(configFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := LoadFile(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := LoadEnv(); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)

	cfg.HTTP.Host = getEnv("HTTP_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getEnv("HTTP_PORT", cfg.HTTP.Port)
	cfg.HTTP.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", cfg.HTTP.PublicBaseURL), "/")
	cfg.HTTP.ReadHeaderTimeout = getDuration("HTTP_READ_HEADER_TIMEOUT", cfg.HTTP.ReadHeaderTimeout)
	cfg.HTTP.ReadTimeout = getDuration("HTTP_READ_TIMEOUT", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout)
	cfg.HTTP.IdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", cfg.HTTP.IdleTimeout)
	cfg.HTTP.ShutdownTimeout = getDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.SecureCookies = getBool("SECURE_COOKIES", cfg.HTTP.SecureCookies)

	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)

	cfg.OpenAI.APIKey = strings.TrimSpace(getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey))
	cfg.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.WhisperModel = getEnv("WHISPER_MODEL", cfg.OpenAI.WhisperModel)
	cfg.OpenAI.EnhanceModel = getEnv("ENHANCE_MODEL", cfg.OpenAI.EnhanceModel)
	cfg.OpenAI.Language = getEnv("TRANSCRIPTION_LANGUAGE", cfg.OpenAI.Language)
	cfg.OpenAI.STTTimeout = getDuration("STT_TIMEOUT", cfg.OpenAI.STTTimeout)
	cfg.OpenAI.EnhanceTimeout = getDuration("ENHANCE_TIMEOUT", cfg.OpenAI.EnhanceTimeout)

	cfg.GitHub.ClientID = getEnv("GITHUB_CLIENT_ID", cfg.GitHub.ClientID)
	cfg.GitHub.ClientSecret = getEnv("GITHUB_CLIENT_SECRET", cfg.GitHub.ClientSecret)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.Region = getEnv("MINIO_REGION", cfg.MinIO.Region)
	cfg.MinIO.UseSSL = getBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.TTL = getDuration("SESSION_CACHE_TTL", cfg.Redis.TTL)
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getDuration accepts Go duration strings ("90s") or plain seconds ("90").
func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
