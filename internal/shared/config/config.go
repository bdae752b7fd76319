package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 5 << 20

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	PublicBaseURL    string
	CORSAllowOrigin  []string
	StoreBackend     string
	DataFile         string
	DatabaseURL      string
	ObjectStoreType  string
	UploadDir        string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	GCSBucket        string
	MaxUploadBytes   int64
	StrictPDF        bool
	AdminKey         string
	SendGridAPIKey   string
	SenderEmail      string
	AdminEmail       string
	NotifyQueueURL   string
	NotifyTimeout    time.Duration
	RedisURL         string
	RateLimitEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env wins.
	for _, path := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				log.Printf("config: failed to load %s: %v", path, err)
			}
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	storeBackend := normalizeStoreBackend(getEnv("STORE_BACKEND", "file"))
	dbURL := os.Getenv("DATABASE_URL")

	if storeBackend == "postgres" && dbURL == "" {
		log.Printf("STORE_BACKEND=postgres requires DATABASE_URL")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		StoreBackend:     storeBackend,
		DataFile:         getEnv("DATA_FILE", "./data/applications.json"),
		DatabaseURL:      dbURL,
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		UploadDir:        getEnv("UPLOAD_DIR", "./data/uploads"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", "uploads/"),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		MaxUploadBytes:   getInt64("UPLOAD_MAX_BYTES", defaultMaxUploadBytes),
		StrictPDF:        getBool("UPLOAD_STRICT_PDF", false),
		AdminKey:         os.Getenv("ADMIN_KEY"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SenderEmail:      os.Getenv("SENDER_EMAIL"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		NotifyQueueURL:   os.Getenv("NOTIFY_QUEUE_URL"),
		NotifyTimeout:    getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		RedisURL:         os.Getenv("REDIS_URL"),
		RateLimitEnabled: getBool("RATE_LIMIT_ENABLED", true),
	}
}

// NotificationsEnabled reports whether outbound email credentials are present.
func (c Config) NotificationsEnabled() bool {
	return strings.TrimSpace(c.SendGridAPIKey) != "" && strings.TrimSpace(c.SenderEmail) != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return "file"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}
