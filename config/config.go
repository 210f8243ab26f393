package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/skill-ladder/app/observability"
)

// Auth modes.
const (
	AuthModeGoogle = "google"
	AuthModeHMAC   = "hmac"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Auth          AuthConfig          `yaml:"auth"`
	Ladder        LadderConfig        `yaml:"ladder"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in process.
type NATSConfig struct {
	URL      string `yaml:"url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimit is the sustained requests per second allowed per client IP on
	// write endpoints. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// AuthConfig selects how identity tokens are verified.
type AuthConfig struct {
	Mode            string        `yaml:"mode"`
	GoogleClientIDs []string      `yaml:"google_client_ids"`
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	JWTTTL          time.Duration `yaml:"jwt_ttl"`
}

// LadderConfig holds ladder policy and creation defaults.
type LadderConfig struct {
	RequireIdentityForMatches bool           `yaml:"require_identity_for_matches"`
	AsyncReprojection         bool           `yaml:"async_reprojection"`
	MatchPageSize             int            `yaml:"match_page_size"`
	Defaults                  LadderDefaults `yaml:"defaults"`
}

// LadderDefaults fill in parameters omitted from a create request.
type LadderDefaults struct {
	Mu              float64 `yaml:"mu"`
	Sigma           float64 `yaml:"sigma"`
	Beta            float64 `yaml:"beta"`
	Tau             float64 `yaml:"tau"`
	DrawProbability float64 `yaml:"draw_probability"`
	TeamsCount      int     `yaml:"teams_count"`
	PlayersPerTeam  int     `yaml:"players_per_team"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
}

// Default returns a configuration with every optional value filled in.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      5,
			RateBurst:      20,
		},
		Auth: AuthConfig{
			Mode:      AuthModeGoogle,
			JWTIssuer: "skill-ladder",
			JWTTTL:    24 * time.Hour,
		},
		Ladder: LadderConfig{
			MatchPageSize: 42,
			Defaults: LadderDefaults{
				Mu:              25,
				Sigma:           25.0 / 3,
				Beta:            25.0 / 6,
				Tau:             25.0 / 300,
				DrawProbability: 0.10,
				TeamsCount:      2,
				PlayersPerTeam:  1,
			},
		},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to environment-only
// configuration. Variables from a .env file in the working directory are
// loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// --- OVERRIDE WITH ENV VARS IF PRESENT ---
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_IDS"); v != "" {
		cfg.Auth.GoogleClientIDs = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.Auth.JWTIssuer = v
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL value: %w", err)
		}
		cfg.Auth.JWTTTL = d
	}
	if v := os.Getenv("LADDER_REQUIRE_IDENTITY_FOR_MATCHES"); v != "" {
		cfg.Ladder.RequireIdentityForMatches = v == "true"
	}
	if v := os.Getenv("LADDER_ASYNC_REPROJECTION"); v != "" {
		cfg.Ladder.AsyncReprojection = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	return nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn (DATABASE_URL) is required")
	}
	switch c.Auth.Mode {
	case AuthModeGoogle:
		if len(c.Auth.GoogleClientIDs) == 0 {
			return errors.New("auth.google_client_ids (GOOGLE_CLIENT_IDS) is required in google mode")
		}
	case AuthModeHMAC:
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret (JWT_SECRET) is required in hmac mode")
		}
	default:
		return fmt.Errorf("unknown auth.mode %q", c.Auth.Mode)
	}
	if c.Ladder.MatchPageSize <= 0 {
		return errors.New("ladder.match_page_size must be positive")
	}
	return nil
}

// ToObsConfig maps the observability section onto the telemetry package.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "skill-ladder",
		Environment:    appCfg.Observability.Environment,
		LogLevel:       appCfg.Observability.LogLevel,
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
