package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr    string
		Metrics bool
	}
	Database struct {
		Path string
	}
	Auth struct {
		SecretKey     string
		SessionTTL    time.Duration
		SweepInterval time.Duration
		CookieName    string
		SecureCookie  bool
	}
	Storage struct {
		Backend      string
		StaticDir    string
		UploadDir    string
		PublicPrefix string
		Bucket       string
		KeyPrefix    string
		Region       string
		Endpoint     string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Load reads configuration from environment variables, an optional .env file
// and an optional config file in the working directory.
func Load() (Config, error) {
	// existing environment wins over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.metrics", true)
	v.SetDefault("database.path", "data/blog.db")
	v.SetDefault("auth.secretkey", "")
	v.SetDefault("auth.sessionttl", "168h")
	v.SetDefault("auth.sweepinterval", "1h")
	v.SetDefault("auth.cookiename", "blog_session")
	v.SetDefault("auth.securecookie", false)
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.staticdir", "static")
	v.SetDefault("storage.uploaddir", "static/uploads")
	v.SetDefault("storage.publicprefix", "uploads")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "blog")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// the plain SECRET_KEY name is honoured for compatibility with existing deployments
	if err := v.BindEnv("auth.secretkey", "BLOG_AUTH_SECRETKEY", "SECRET_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind secret key env: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return errors.New("auth secret key is required (BLOG_AUTH_SECRETKEY or SECRET_KEY)")
	}
	switch c.Storage.Backend {
	case StorageLocal:
		if strings.TrimSpace(c.Storage.UploadDir) == "" {
			return errors.New("storage upload dir is required")
		}
	case StorageS3:
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return errors.New("storage bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
