package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	internalhttp "github.com/nati-dev/nati-console/internal/api/http"
	"github.com/nati-dev/nati-console/internal/auth"
	"github.com/nati-dev/nati-console/internal/db"
	grpcserver "github.com/nati-dev/nati-console/internal/grpc/server"
	"github.com/nati-dev/nati-console/internal/logging"
	"github.com/nati-dev/nati-console/internal/session"
)

const placeholderSecret = "change-me"

type Config struct {
	Log     logging.Config
	Http    internalhttp.Config
	Grpc    GrpcConfig
	DB      DBConfig
	JWT     auth.Config
	Session session.Config
	Usage   UsageConfig
}

type GrpcConfig struct {
	grpcserver.Config `mapstructure:",squash"`
	Enabled           bool `mapstructure:"enabled"`
}

type DBConfig struct {
	db.Config   `mapstructure:",squash"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type UsageConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the timezone used for usage range boundaries. Unknown
// names fall back to the server's local zone.
func (u UsageConfig) Location() *time.Location {
	if u.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		slog.Warn("Unknown usage timezone, using local time", "timezone", u.Timezone, "error", err)
		return time.Local
	}
	return loc
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	v := newViper()
	cfg, err := loadConfig(v, ".", "./cmd/nati-console")
	if err != nil {
		panic(err)
	}
	config = cfg
	logCloser = logging.Init(config.Log)

	if config.JWT.Secret == placeholderSecret {
		slog.Warn("jwt.secret is the placeholder value, set JWT_SECRET before exposing the console")
	}
	slog.Debug("Console config loaded",
		"http_port", config.Http.Port,
		"grpc_enabled", config.Grpc.Enabled,
		"grpc_tls", config.Grpc.TLS.Enabled,
		"schema", config.DB.Schema,
		"poll_interval", config.Session.PollInterval,
		"usage_timezone", config.Usage.Timezone)

	// Only the log level is applied live.
	v.OnConfigChange(func(e fsnotify.Event) {
		lvl := v.GetString("log.level")
		logging.SetLevel(lvl)
		slog.Info("Config file changed", "file", e.Name, "op", e.Op.String(), "log_level", lvl)
	})
	v.WatchConfig()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db.url", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")

	v.SetDefault("log.level", logging.LOG_LEVEL_INFO)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.build_log_limit", 10)
	v.SetDefault("grpc.port", 9090)
	v.SetDefault("jwt.expiration_hours", auth.DefaultExpirationHours)
	v.SetDefault("session.poll_interval", 3*time.Second)
	v.SetDefault("session.settle_delay", 2*time.Second)
	return v
}

func loadConfig(v *viper.Viper, dirs ...string) (Config, error) {
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return Config{}, errors.New("jwt.secret is required (or set JWT_SECRET)")
	}
	if cfg.DB.Url == "" {
		return Config{}, errors.New("db.url is required (or set DATABASE_URL)")
	}
	return cfg, nil
}
