package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Chat     ChatConfig
	Realtime RealtimeConfig
	WebRTC   WebRTCConfig
	AWS      AWSConfig
	Archive  ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int // header read timeout; sockets are long-lived so there is no write timeout
	CORSAllowedOrigins string // comma-separated, or "*" for all
	IndexFile          string // optional client page served at "/"
	WSPath             string
}

// DatabaseConfig selects and configures the chat store.
type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file
	URL      string // if set, used as-is for postgres
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ChatConfig holds chat payload limits. Limits apply to the encoded (data URL) length.
type ChatConfig struct {
	MaxImageEncoded int
	MaxFileEncoded  int
	Welcome         string
}

// RealtimeConfig holds WebSocket settings.
type RealtimeConfig struct {
	ReadLimit  int64
	SendBuffer int
}

// WebRTCConfig holds STUN/TURN ICE server URLs handed to clients.
type WebRTCConfig struct {
	ICEUrls []string // comma-separated in env
}

// AWSConfig holds AWS credentials and the archive bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ArchiveBucket   string
}

// ArchiveConfig controls periodic history snapshots.
type ArchiveConfig struct {
	IntervalMinutes int // 0 disables the ticker; POST /api/archive still works
}

// Postgres reports whether the postgres driver is selected.
func (c DatabaseConfig) Postgres() bool {
	return strings.EqualFold(c.Driver, "postgres") || strings.EqualFold(c.Driver, "pgx")
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "10000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			IndexFile:          getEnv("INDEX_FILE", ""),
			WSPath:             getEnv("WS_PATH", "/ws"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "app.db"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "chat"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Chat: ChatConfig{
			MaxImageEncoded: getEnvInt("CHAT_MAX_IMAGE_ENCODED", 20_000_000),
			MaxFileEncoded:  getEnvInt("CHAT_MAX_FILE_ENCODED", 50_000_000),
			Welcome:         getEnv("CHAT_WELCOME", "Connected to CHAINeS WS"),
		},
		Realtime: RealtimeConfig{
			ReadLimit:  int64(getEnvInt("WS_READ_LIMIT", 64<<20)),
			SendBuffer: getEnvInt("WS_SEND_BUFFER", 256),
		},
		WebRTC: WebRTCConfig{
			ICEUrls: splitTrim(getEnv("WEBRTC_ICE_URLS", "stun:stun.l.google.com:19302"), ","),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ArchiveBucket:   getEnv("AWS_S3_ARCHIVE_BUCKET", "chat-archive-bucket"),
		},
		Archive: ArchiveConfig{
			IntervalMinutes: getEnvInt("ARCHIVE_INTERVAL_MIN", 0),
		},
	}
	if cfg.Chat.MaxImageEncoded <= 0 || cfg.Chat.MaxFileEncoded <= 0 {
		return nil, fmt.Errorf("chat payload limits must be positive")
	}
	// A frame may carry both attachments plus JSON framing; anything the gateway would
	// accept must fit under the socket read limit or the connection is closed.
	if minRead := int64(cfg.Chat.MaxImageEncoded) + int64(cfg.Chat.MaxFileEncoded) + 1<<20; cfg.Realtime.ReadLimit < minRead {
		cfg.Realtime.ReadLimit = minRead
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
