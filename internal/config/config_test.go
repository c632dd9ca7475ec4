package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "secret")
	t.Setenv("TOKEN_MARKER", "marker")
	t.Setenv("MONGO_URL", "")
	t.Setenv("AVATAR_STORAGE", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("JWT_REFRESH_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.JWTAccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 5, cfg.BcryptCost)
	assert.Equal(t, AvatarStorageLocal, cfg.AvatarStorage)
	assert.Empty(t, cfg.MongoURL)
}

func TestLoadRequiresTokenSecrets(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("TOKEN_MARKER", "marker")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServerPort:     "8080",
			RequestTimeout: time.Second,
			TokenSecret:    "secret",
			TokenMarker:    "marker",
			JWTAccessTTL:   time.Minute,
			JWTRefreshTTL:  time.Hour,
			MaxUploadSize:  1,
			DBMaxConns:     4,
			DBMinConns:     1,
			AvatarStorage:  AvatarStorageLocal,
			UploadRoot:     "./uploads",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing marker", mutate: func(c *Config) { c.TokenMarker = "" }, wantErr: "TOKEN_MARKER"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.AvatarStorage = AvatarStorageS3 }, wantErr: "S3_BUCKET"},
		{name: "unknown storage", mutate: func(c *Config) { c.AvatarStorage = "ftp" }, wantErr: "AVATAR_STORAGE"},
		{name: "admin email only", mutate: func(c *Config) { c.AdminEmail = "a@b.co" }, wantErr: "ADMIN_EMAIL"},
		{name: "pool bounds", mutate: func(c *Config) { c.DBMinConns = 10 }, wantErr: "DB_MAX_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGoogleEnabled(t *testing.T) {
	cfg := Config{GoogleClientID: "id", GoogleClientSecret: "secret"}
	assert.False(t, cfg.GoogleEnabled())

	cfg.GoogleRedirectURL = "http://localhost/users/google-auth/redirect"
	assert.True(t, cfg.GoogleEnabled())
}
