package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		Mode            string        `mapstructure:"mode"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Auth struct {
		JWTSecret  string        `mapstructure:"jwt_secret"`
		TokenTTL   time.Duration `mapstructure:"token_ttl"`
		ResetTTL   time.Duration `mapstructure:"reset_ttl"`
		BcryptCost int           `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
	App struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"app"`
	Email struct {
		SMTPHost     string        `mapstructure:"smtp_host"`
		SMTPPort     int           `mapstructure:"smtp_port"`
		SMTPUser     string        `mapstructure:"smtp_user"`
		SMTPPassword string        `mapstructure:"smtp_password"`
		From         string        `mapstructure:"from"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"email"`
	Storage struct {
		Bucket    string        `mapstructure:"bucket"`
		KeyPrefix string        `mapstructure:"keyprefix"`
		Region    string        `mapstructure:"region"`
		Endpoint  string        `mapstructure:"endpoint"`
		URLTTL    time.Duration `mapstructure:"url_ttl"`
	} `mapstructure:"storage"`
	AWS struct {
		Profile string `mapstructure:"profile"`
	} `mapstructure:"aws"`
	RateLimit struct {
		RedisAddr string        `mapstructure:"redis_addr"`
		Limit     int           `mapstructure:"limit"`
		Window    time.Duration `mapstructure:"window"`
	} `mapstructure:"ratelimit"`
	Admin struct {
		Email            string `mapstructure:"email"`
		Password         string `mapstructure:"password"`
		Name             string `mapstructure:"name"`
		UserDeletePolicy string `mapstructure:"user_delete_policy"`
	} `mapstructure:"admin"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads configuration from .env, environment variables and an optional config file.
func Load() (Config, error) {
	// variables already present in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("JOBBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

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
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/jobboard.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("auth.reset_ttl", "1h")
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("app.base_url", "http://localhost:5173")
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from", "no-reply@jobboard.local")
	v.SetDefault("email.timeout", "10s")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "company-logos")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.url_ttl", "15m")
	v.SetDefault("aws.profile", "")
	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.user_delete_policy", "keep")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func (c *Config) normalize() {
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Admin.UserDeletePolicy = strings.ToLower(strings.TrimSpace(c.Admin.UserDeletePolicy))
	c.Auth.JWTSecret = strings.TrimSpace(c.Auth.JWTSecret)
	c.App.BaseURL = strings.TrimRight(strings.TrimSpace(c.App.BaseURL), "/")
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q is not one of debug, release, test", c.Server.Mode))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.Admin.UserDeletePolicy {
	case "keep", "cascade", "restrict":
	default:
		errs = append(errs, fmt.Errorf("admin.user_delete_policy %q is not one of keep, cascade, restrict", c.Admin.UserDeletePolicy))
	}
	for name, d := range map[string]time.Duration{
		"auth.token_ttl":         c.Auth.TokenTTL,
		"auth.reset_ttl":         c.Auth.ResetTTL,
		"server.request_timeout": c.Server.RequestTimeout,
		"email.timeout":          c.Email.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.RateLimit.RedisAddr != "" && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.limit and ratelimit.window must be positive"))
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("admin.email and admin.password must be set together"))
	}
	return errors.Join(errs...)
}
