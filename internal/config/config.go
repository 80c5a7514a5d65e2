package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type InspectionsConfig struct {
	EnterpriseID string
}

type RelayConfig struct {
	Path           string
	UpstreamURL    string
	APIKey         string
	RatePerMinute  int
	Burst          int
	AllowedOrigins []string
	Timeout        time.Duration
}

type InterpreterConfig struct {
	RelayURL    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type QueryConfig struct {
	NoticeTTL      time.Duration
	SessionIdleTTL time.Duration
}

type Config struct {
	Environment string
	DemoMode    bool
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Inspections InspectionsConfig
	Relay       RelayConfig
	Interpreter InterpreterConfig
	Query       QueryConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		DemoMode:    v.GetBool("APP_DEMO_MODE"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Inspections: InspectionsConfig{
			EnterpriseID: v.GetString("INSPECTIONS_ENTERPRISE_ID"),
		},
		Relay: RelayConfig{
			Path:           v.GetString("RELAY_PATH"),
			UpstreamURL:    v.GetString("RELAY_UPSTREAM_URL"),
			APIKey:         v.GetString("OPENAI_API_KEY"),
			RatePerMinute:  v.GetInt("RELAY_RATE_PER_MINUTE"),
			Burst:          v.GetInt("RELAY_BURST"),
			AllowedOrigins: splitList(v.GetString("RELAY_ALLOWED_ORIGINS")),
			Timeout:        v.GetDuration("RELAY_TIMEOUT"),
		},
		Interpreter: InterpreterConfig{
			RelayURL:    v.GetString("INTERPRETER_RELAY_URL"),
			Model:       v.GetString("INTERPRETER_MODEL"),
			Temperature: v.GetFloat64("INTERPRETER_TEMPERATURE"),
			MaxTokens:   v.GetInt("INTERPRETER_MAX_TOKENS"),
			Timeout:     v.GetDuration("INTERPRETER_TIMEOUT"),
		},
		Query: QueryConfig{
			NoticeTTL:      v.GetDuration("NOTICE_TTL"),
			SessionIdleTTL: v.GetDuration("SESSION_IDLE_TTL"),
		},
	}

	applyDefaults(cfg, v.IsSet("INTERPRETER_TEMPERATURE"))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config, temperatureSet bool) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Relay.Path == "" {
		cfg.Relay.Path = "/api/openai-proxy"
	}
	if cfg.Relay.UpstreamURL == "" {
		cfg.Relay.UpstreamURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Relay.RatePerMinute <= 0 {
		cfg.Relay.RatePerMinute = 30
	}
	if cfg.Relay.Burst <= 0 {
		cfg.Relay.Burst = 5
	}
	if cfg.Relay.Timeout <= 0 {
		cfg.Relay.Timeout = 60 * time.Second
	}
	if cfg.Interpreter.Model == "" {
		cfg.Interpreter.Model = "gpt-4"
	}
	if !temperatureSet {
		cfg.Interpreter.Temperature = 0.3
	}
	if cfg.Interpreter.MaxTokens <= 0 {
		cfg.Interpreter.MaxTokens = 150
	}
	if cfg.Interpreter.Timeout <= 0 {
		cfg.Interpreter.Timeout = 30 * time.Second
	}
	if cfg.Query.NoticeTTL <= 0 {
		cfg.Query.NoticeTTL = 5 * time.Second
	}
	if cfg.Query.SessionIdleTTL <= 0 {
		cfg.Query.SessionIdleTTL = time.Hour
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" && !cfg.DemoMode {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Inspections.EnterpriseID == "" {
		return fmt.Errorf("INSPECTIONS_ENTERPRISE_ID is required")
	}
	if cfg.Interpreter.Temperature < 0 || cfg.Interpreter.Temperature > 2 {
		return fmt.Errorf("INTERPRETER_TEMPERATURE must be between 0 and 2")
	}
	if !strings.HasPrefix(cfg.Relay.Path, "/") {
		return fmt.Errorf("RELAY_PATH must start with /")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
