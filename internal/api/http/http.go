package http

type Config struct {
	Port           uint     `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	BuildLogLimit  int      `mapstructure:"build_log_limit"`
}
