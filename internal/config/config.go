package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Product name uniqueness scopes
const (
	NameScopeGlobal = "global"
	NameScopeOwner  = "owner"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Policy   PolicyConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	PublicBaseURL  string
	AllowedOrigins []string

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
}

type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      string
	Password  string
	DB        int
	Requests  int // per window, on /register and /login
	WindowSec int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type StorageConfig struct {
	PhotoDir    string
	MaxUploadMB int64
}

// PolicyConfig holds the access policies that are deployment decisions
// rather than code.
type PolicyConfig struct {
	// PublicPhotoURLs serves /photos/{userId}/{filename} without a token.
	PublicPhotoURLs bool
	// ProductNameScope is NameScopeGlobal or NameScopeOwner.
	ProductNameScope string
}

func Load() *Config {
	// Populate the process env too, so plain os.Getenv readers agree with viper
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env into environment: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("PUBLIC_BASE_URL", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("TRUST_PROXY_HEADERS", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("PHOTO_STORAGE_DIR", "uploads")
	viper.SetDefault("PHOTO_MAX_UPLOAD_MB", 10)
	viper.SetDefault("PHOTO_PUBLIC_URLS", false)
	viper.SetDefault("PRODUCT_NAME_SCOPE", NameScopeGlobal)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			PublicBaseURL:  strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),

			TrustProxyHeaders: viper.GetBool("TRUST_PROXY_HEADERS"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			Schema:       viper.GetString("DB_SCHEMA"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:   viper.GetBool("REDIS_ENABLED"),
			Host:      viper.GetString("REDIS_HOST"),
			Port:      viper.GetString("REDIS_PORT"),
			Password:  viper.GetString("REDIS_PASSWORD"),
			DB:        viper.GetInt("REDIS_DB"),
			Requests:  viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSec: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Storage: StorageConfig{
			PhotoDir:    viper.GetString("PHOTO_STORAGE_DIR"),
			MaxUploadMB: viper.GetInt64("PHOTO_MAX_UPLOAD_MB"),
		},
		Policy: PolicyConfig{
			PublicPhotoURLs:  viper.GetBool("PHOTO_PUBLIC_URLS"),
			ProductNameScope: strings.ToLower(viper.GetString("PRODUCT_NAME_SCOPE")),
		},
	}
}

// Validate reports configuration that would make the server unsafe or
// unusable. Outside production a missing JWT_SECRET is replaced by a random
// per-process secret, so tokens do not survive a restart.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else if secret, err := randomSecret(); err != nil {
			errs = append(errs, fmt.Errorf("JWT_SECRET is empty and a random one could not be generated: %w", err))
		} else {
			log.Printf("Warning: JWT_SECRET is empty, using a random secret for this process")
			c.JWT.Secret = secret
		}
	}
	if c.JWT.AccessExpiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRY must be positive, got %d", c.JWT.AccessExpiry))
	}
	if c.Policy.ProductNameScope != NameScopeGlobal && c.Policy.ProductNameScope != NameScopeOwner {
		errs = append(errs, fmt.Errorf("PRODUCT_NAME_SCOPE must be %q or %q, got %q",
			NameScopeGlobal, NameScopeOwner, c.Policy.ProductNameScope))
	}
	if c.Storage.PhotoDir == "" {
		errs = append(errs, errors.New("PHOTO_STORAGE_DIR is required"))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("PHOTO_MAX_UPLOAD_MB must be positive, got %d", c.Storage.MaxUploadMB))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// AccessTokenTTL is the only place the token lifetime is derived from.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessExpiry) * time.Minute
}

// DSN builds a pgx connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   d.Database,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	q.Set("search_path", d.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
