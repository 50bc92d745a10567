package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Settings is the typed runtime configuration. Values come from the
// environment (DATABASE_DSN, JWT_SECRET, ...) and, when CHRONOS_CONFIG points
// at a YAML file, from that file; the environment wins.
type Settings struct {
	LogLevel       string        `mapstructure:"log_level"`
	HTTPAddr       string        `mapstructure:"http_addr"`
	StoreBackend   string        `mapstructure:"store_backend"`
	DatabaseDSN    string        `mapstructure:"database_dsn"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	CookieDomain   string        `mapstructure:"cookie_domain"`
	Timezone       string        `mapstructure:"timezone"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	GeminiModel    string        `mapstructure:"gemini_model"`
	AdviceTimeout  time.Duration `mapstructure:"advice_timeout"`
	AdviceCache    int           `mapstructure:"advice_cache_size"`
	MoveRetries    uint64        `mapstructure:"move_max_retries"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
}

var settingKeys = []string{
	"log_level", "http_addr", "store_backend", "database_dsn", "sqlite_path",
	"redis_addr", "jwt_secret", "allowed_origins", "cookie_domain", "timezone", "gemini_api_key",
	"gemini_model", "advice_timeout", "advice_cache_size", "move_max_retries", "lock_ttl",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("store_backend", BackendPostgres)
	v.SetDefault("sqlite_path", "chronos.db")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("advice_timeout", 8*time.Second)
	v.SetDefault("advice_cache_size", 256)
	v.SetDefault("move_max_retries", 4)
	v.SetDefault("lock_ttl", 5*time.Second)
}

// Load reads settings from the environment and the optional config file.
func Load() (*Settings, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Settings, error) {
	setDefaults(v)
	for _, k := range settingKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if err := v.BindEnv("config_file", "CHRONOS_CONFIG"); err != nil {
		return nil, err
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	// Env values arrive as one comma separated string.
	if len(s.AllowedOrigins) == 1 && strings.Contains(s.AllowedOrigins[0], ",") {
		s.AllowedOrigins = strings.Split(s.AllowedOrigins[0], ",")
	}
	s.StoreBackend = strings.ToLower(strings.TrimSpace(s.StoreBackend))

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	switch s.StoreBackend {
	case BackendPostgres:
		if s.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres backend")
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.StoreBackend)
	}
	if s.AdviceTimeout <= 0 {
		return errors.New("ADVICE_TIMEOUT must be positive")
	}
	if s.LockTTL <= 0 {
		return errors.New("LOCK_TTL must be positive")
	}
	return nil
}

// Location resolves the configured timezone, falling back to a fixed BRT offset.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}
