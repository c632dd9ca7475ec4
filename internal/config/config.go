package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AvatarStorageLocal = "local"
	AvatarStorageS3    = "s3"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	StreamMaxLifetime       time.Duration
	StreamIdleTimeout       time.Duration

	MongoURL      string
	MongoDatabase string

	AuditDatabaseURL string
	DBMaxConns       int32
	DBMinConns       int32

	TokenSecret   string
	TokenMarker   string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	BcryptCost    int

	AdminEmail    string
	AdminPassword string

	FrontendURL      string
	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	MaxUploadSize int64
	AvatarStorage string
	UploadRoot    string
	UploadBaseURL string
	S3Bucket      string
	S3Region      string
	S3PublicRead  bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	BrevoAPIKey     string
	MailSenderEmail string
	MailSenderName  string
	VerifyBaseURL   string

	OpenAPIPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		StreamMaxLifetime:       getDuration("STREAM_MAX_LIFETIME", time.Hour),
		StreamIdleTimeout:       getDuration("STREAM_IDLE_TIMEOUT", time.Minute),
		MongoURL:                strings.TrimSpace(os.Getenv("MONGO_URL")),
		MongoDatabase:           getEnv("MONGO_DATABASE", "shop"),
		AuditDatabaseURL:        strings.TrimSpace(os.Getenv("AUDIT_DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		TokenSecret:             strings.TrimSpace(os.Getenv("TOKEN_SECRET")),
		TokenMarker:             strings.TrimSpace(os.Getenv("TOKEN_MARKER")),
		JWTAccessTTL:            getDuration("JWT_ACCESS_TTL", 120*time.Second),
		JWTRefreshTTL:           getDuration("JWT_REFRESH_TTL", 720*time.Hour),
		BcryptCost:              getInt("BCRYPT_COST", 5),
		AdminEmail:              strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:           os.Getenv("ADMIN_PASSWORD"),
		FrontendURL:             getEnv("BASE_URL_FRONT_END", "http://localhost:3000"),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		MaxUploadSize:           getInt64("MAX_UPLOAD_SIZE", 20<<20),
		AvatarStorage:           strings.ToLower(getEnv("AVATAR_STORAGE", AvatarStorageLocal)),
		UploadRoot:              getEnv("UPLOAD_ROOT", "./uploads"),
		UploadBaseURL:           getEnv("UPLOAD_BASE_URL", "/uploads"),
		S3Bucket:                strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
		S3PublicRead:            getBool("S3_PUBLIC_READ", false),
		GoogleClientID:          strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret:      strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		GoogleRedirectURL:       strings.TrimSpace(os.Getenv("GOOGLE_REDIRECT_URL")),
		BrevoAPIKey:             strings.TrimSpace(os.Getenv("BREVO_API_KEY")),
		MailSenderEmail:         strings.TrimSpace(os.Getenv("MAIL_SENDER_EMAIL")),
		MailSenderName:          getEnv("MAIL_SENDER_NAME", "Shop"),
		VerifyBaseURL:           strings.TrimSpace(os.Getenv("VERIFY_BASE_URL")),
		OpenAPIPath:             getEnv("OPENAPI_PATH", "./docs/openapi.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TokenSecret) == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}

	if strings.TrimSpace(c.TokenMarker) == "" {
		return fmt.Errorf("TOKEN_MARKER is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS cannot be lower than DB_MIN_CONNS")
	}

	switch c.AvatarStorage {
	case AvatarStorageLocal:
		if strings.TrimSpace(c.UploadRoot) == "" {
			return fmt.Errorf("UPLOAD_ROOT cannot be empty")
		}
	case AvatarStorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when AVATAR_STORAGE=s3")
		}
	default:
		return fmt.Errorf("AVATAR_STORAGE must be %q or %q", AvatarStorageLocal, AvatarStorageS3)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return nil
}

// GoogleEnabled reports whether all Google OAuth credentials are present.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
