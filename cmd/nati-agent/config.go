package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/heartbeat"
	"github.com/nati-dev/nati-console/internal/logging"
)

const defaultStateFile = "nati-agent.state.yml"

type Config struct {
	Log       logging.Config
	Http      HttpConfig
	DB        db.Config
	Heartbeat heartbeat.Config
	Agent     AgentConfig
	Console   ConsoleConfig
}

type HttpConfig struct {
	Port uint `mapstructure:"port"`
}

type AgentConfig struct {
	StateFile    string `mapstructure:"state_file"`
	PollCommands bool   `mapstructure:"poll_commands"`
}

// ConsoleConfig points the startup health probe at the console's gRPC port.
type ConsoleConfig struct {
	GrpcAddress string    `mapstructure:"grpc_address"`
	TLS         TLSConfig `mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	CAFile             string `mapstructure:"ca_file"`
	ServerNameOverride string `mapstructure:"server_name_override"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	cfg, err := loadConfig(newViper(), ".", "./cmd/nati-agent")
	if err != nil {
		panic(err)
	}
	config = cfg
	logCloser = logging.Init(config.Log)
	slog.Debug("Agent config loaded",
		"user_id", config.Heartbeat.UserID,
		"session_id", config.Heartbeat.SessionID,
		"apps", len(config.Heartbeat.Apps),
		"poll_commands", config.Agent.PollCommands)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db.url", "DATABASE_URL")
	_ = v.BindEnv("heartbeat.user_id", "NATI_USER_ID")

	v.SetDefault("http.port", 8181)
	v.SetDefault("heartbeat.interval", heartbeat.DefaultInterval)
	v.SetDefault("agent.state_file", defaultStateFile)
	v.SetDefault("agent.poll_commands", true)
	return v
}

// loadConfig reads application.yml from the first dir that has one. A missing
// heartbeat.session_id is taken from, or written to, agent.state_file.
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
	if cfg.Heartbeat.UserID == "" {
		return Config{}, errors.New("heartbeat.user_id is required (or set NATI_USER_ID)")
	}

	if cfg.Heartbeat.SessionID == "" {
		id, err := loadOrCreateSessionID(cfg.Agent.StateFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Heartbeat.SessionID = id
	}
	return cfg, nil
}
