package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, PhotosLocal, cfg.Photos.Backend)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  port: 8080
  read_timeout: 3s
database:
  host: db
  port: 5432
  user: app
  password: secret
  dbname: adoption
auth:
  jwt_secret: from-file
  token_ttl: 1h
photos:
  backend: s3
  s3:
    bucket: pet-photos
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "pet-photos", cfg.Photos.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.Photos.S3.Region)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=adoption sslmode=disable", cfg.Database.ConnString())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "abc")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Auth.JWTSecret = "s"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults with secret", mutate: func(c *Config) {}},
		{name: "dev mode without secret", mutate: func(c *Config) { c.Auth.JWTSecret = ""; c.Auth.DevMode = true }},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Photos.Backend = PhotosS3 }, wantErr: "bucket"},
		{name: "unknown backend", mutate: func(c *Config) { c.Photos.Backend = "ftp" }, wantErr: "photos.backend"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
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

func TestConnString_PrefersExplicitDSN(t *testing.T) {
	d := DatabaseConfig{DSN: "postgres://x", Host: "ignored"}
	assert.Equal(t, "postgres://x", d.ConnString())
	assert.True(t, d.Enabled())
}
