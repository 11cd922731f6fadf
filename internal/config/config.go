package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

type Config struct {
	ServiceName string

	Port string
	Env  string

	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int
	DBUrl      string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	JWTAccessDuration time.Duration

	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration

	MinioEnabled   bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	BaseURL        string
	NATSURL        string
	InternalAPIKey string

	CORSOrigins []string

	TokenRateLimit float64
	TokenRateBurst int
}

// LoadConfig reads an optional config.yaml from the working directory or ./config
// and lets environment variables override every key.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	cfg := &Config{
		ServiceName: v.GetString("service_name"),

		Port:     v.GetString("http_port"),
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),

		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),
		DBMaxConns: v.GetInt("db_max_conns"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		JWTSecret:         v.GetString("jwt_secret"),
		JWTAccessDuration: v.GetDuration("jwt_access_duration"),

		SMTPEnabled:  v.GetBool("smtp_enabled"),
		SMTPHost:     v.GetString("smtp_host"),
		SMTPPort:     v.GetInt("smtp_port"),
		SMTPUser:     v.GetString("smtp_username"),
		SMTPPassword: v.GetString("smtp_password"),
		SMTPFrom:     v.GetString("smtp_from"),
		SMTPTimeout:  v.GetDuration("smtp_timeout"),

		MinioEnabled:   v.GetBool("minio_enabled"),
		MinioEndpoint:  v.GetString("minio_endpoint"),
		MinioAccessKey: v.GetString("minio_access_key"),
		MinioSecretKey: v.GetString("minio_secret_key"),
		MinioUseSSL:    v.GetBool("minio_use_ssl"),
		MinioBucket:    v.GetString("minio_bucket"),

		BaseURL:        v.GetString("app_base_url"),
		NATSURL:        v.GetString("nats_url"),
		InternalAPIKey: v.GetString("internal_api_key"),

		CORSOrigins: v.GetStringSlice("cors_origins"),

		TokenRateLimit: v.GetFloat64("token_rate_limit"),
		TokenRateBurst: v.GetInt("token_rate_burst"),
	}

	if v.IsSet("database_url") && v.GetString("database_url") != "" {
		cfg.DBUrl = v.GetString("database_url")
	} else {
		cfg.DBUrl = cfg.getDBUrl()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "taskmate-service")
	v.SetDefault("http_port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "taskmate")
	v.SetDefault("db_password", "taskmate")
	v.SetDefault("db_name", "taskmate")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("database_url", "")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "taskmate-secret-word")
	v.SetDefault("jwt_access_duration", "24h")

	v.SetDefault("smtp_enabled", false)
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "TaskMate <noreply@taskmate.app>")
	v.SetDefault("smtp_timeout", "10s")

	v.SetDefault("minio_enabled", false)
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "minioadmin")
	v.SetDefault("minio_secret_key", "minioadmin")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "avatars")

	v.SetDefault("app_base_url", "http://localhost:3000")
	v.SetDefault("nats_url", "")
	v.SetDefault("internal_api_key", "")

	v.SetDefault("cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("token_rate_limit", 1.0)
	v.SetDefault("token_rate_burst", 5)
}

func (cfg *Config) validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if cfg.JWTAccessDuration <= 0 {
		return errors.New("config: JWT_ACCESS_DURATION must be positive")
	}
	if cfg.IsProduction() && cfg.InternalAPIKey == "" {
		return errors.New("config: INTERNAL_API_KEY is required in production")
	}
	return nil
}

// Logging returns the logger settings for this process.
func (cfg *Config) Logging() logger.Config {
	return logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: cfg.ServiceName,
	}
}

func (cfg *Config) IsProduction() bool {
	return cfg.Env == "production"
}

func (cfg *Config) RedisAddr() string {
	return cfg.RedisHost + ":" + cfg.RedisPort
}

func (cfg *Config) getDBUrl() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + cfg.DBSSLMode,
	}
	return u.String()
}
