package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Session struct {
		// IdleTimeout is the sliding login inactivity window.
		IdleTimeout string `yaml:"idle_timeout"`
		// MaxAge is the absolute lifetime of a session row.
		MaxAge string `yaml:"max_age"`
		// SweepInterval is how often expired rows are purged.
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"session"`
	Github struct {
		ClientID        string `yaml:"client_id"`
		ClientSecret    string `yaml:"client_secret"`
		CallbackBaseURL string `yaml:"callback_base_url"`
	} `yaml:"github"`
	// OpenRegister lets anonymous visitors self-register local accounts.
	OpenRegister bool `yaml:"open_register"`
	// Production hides diagnostic detail on the generic error page.
	Production bool `yaml:"production"`
}

// Load reads YAML config from path and applies environment overrides for
// the secrets that are usually injected rather than committed.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		c.Github.ClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		c.Github.ClientSecret = v
	}
	if v := os.Getenv("GITHUB_CALLBACK_BASE_URL"); v != "" {
		c.Github.CallbackBaseURL = v
	}
	if os.Getenv("QUIZ_OPEN_REGISTER") != "" {
		c.OpenRegister = true
	}
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
