package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PhotosLocal = "local"
	PhotosS3    = "s3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Photos    PhotosConfig    `yaml:"photos"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig: sin DSN ni Host se usan los stores en memoria.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.DSN != "" || d.Host != ""
}

// ConnString devuelve el DSN explícito o arma uno estilo libpq.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Host == "" {
		return ""
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslmode)
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// DevMode acepta X-Debug-User-ID / X-Debug-Role en lugar de tokens.
	DevMode bool `yaml:"dev_mode"`

	Admin AdminConfig `yaml:"admin"`
}

type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

type PhotosConfig struct {
	Backend   string `yaml:"backend"`
	UploadDir string `yaml:"upload_dir"`

	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	Endpoint      string `yaml:"endpoint"`
	PublicBaseURL string `yaml:"public_base_url"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

type RateLimitConfig struct {
	AuthRPS   float64       `yaml:"auth_rps"`
	AuthBurst int           `yaml:"auth_burst"`
	IdleTTL   time.Duration `yaml:"idle_ttl"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			CORSOrigin:      "http://localhost:3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "pet-adoption",
			TokenTTL: 30 * 24 * time.Hour,
		},
		Photos: PhotosConfig{
			Backend:   PhotosLocal,
			UploadDir: "uploads",
			S3:        S3Config{Region: "us-east-1"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-adoption",
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   1,
			AuthBurst: 20,
			IdleTTL:   15 * time.Minute,
		},
	}
}

// Load lee el YAML (si existe) sobre los defaults y después aplica el entorno.
// path vacío usa CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v, ok := lookup("AUTH_DEV_MODE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_DEV_MODE %q: %w", v, err)
		}
		c.Auth.DevMode = b
	}

	str("CORS_ORIGIN", &c.Server.CORSOrigin)
	str("DB_DSN", &c.Database.DSN)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("ADMIN_EMAIL", &c.Auth.Admin.Email)
	str("ADMIN_PASSWORD", &c.Auth.Admin.Password)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("APP_NAME", &c.Log.App)
	str("PHOTOS_BACKEND", &c.Photos.Backend)
	str("UPLOAD_DIR", &c.Photos.UploadDir)
	str("S3_BUCKET", &c.Photos.S3.Bucket)
	str("AWS_REGION", &c.Photos.S3.Region)
	str("S3_ENDPOINT", &c.Photos.S3.Endpoint)
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if !c.Auth.DevMode && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required unless auth.dev_mode is set"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("auth.token_ttl must not be negative"))
	}

	switch c.Photos.Backend {
	case PhotosLocal:
		if c.Photos.UploadDir == "" {
			errs = append(errs, errors.New("photos.upload_dir is required for the local backend"))
		}
	case PhotosS3:
		if c.Photos.S3.Bucket == "" {
			errs = append(errs, errors.New("photos.s3.bucket is required for the s3 backend"))
		}
		if c.Photos.S3.Region == "" {
			errs = append(errs, errors.New("photos.s3.region is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("photos.backend must be %q or %q, got %q", PhotosLocal, PhotosS3, c.Photos.Backend))
	}

	return errors.Join(errs...)
}
