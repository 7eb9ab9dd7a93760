package config

import (
	"os"
	"path/filepath"
	"time"
)

// Client configures the terminal client and its sync engine.
type Client struct {
	APIURL    string `env:"API_URL"    envDefault:"http://localhost:4000"`
	CachePath string `env:"CACHE_PATH"`
	RulesPath string `env:"RULES_PATH"`

	SyncDebounce    time.Duration `env:"SYNC_DEBOUNCE"    envDefault:"1s"`
	PollInterval    time.Duration `env:"POLL_INTERVAL"    envDefault:"3s"`
	PollGuard       time.Duration `env:"POLL_GUARD"       envDefault:"1500ms"`
	MonitorInterval time.Duration `env:"MONITOR_INTERVAL" envDefault:"2s"`
	NoticeTTL       time.Duration `env:"NOTICE_TTL"       envDefault:"2s"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT"     envDefault:"8s"`

	// HistoryLimit caps the undo stack; 0 keeps every frame.
	HistoryLimit int `env:"HISTORY_LIMIT" envDefault:"0"`
}

// LoadClient parses the environment. An unset CACHE_PATH resolves to
// $HOME/.terraform-tracker/cache.db, or a file in the working directory
// when there is no home directory.
func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	if cfg.CachePath == "" {
		cfg.CachePath = defaultCachePath()
	}
	return cfg, nil
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "terraform-tracker-cache.db"
	}
	return filepath.Join(home, ".terraform-tracker", "cache.db")
}
