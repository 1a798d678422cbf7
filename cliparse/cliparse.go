package cliparse

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath        string
	FlushInterval time.Duration
}

// ParseFlags resolves configuration from flags, falling back to environment
// variables (a .env file is loaded when present) and then to defaults.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	var cfg Config
	var flushStr string

	fs := flag.NewFlagSet("edubot", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", "", "Cache database path")
	fs.StringVar(&flushStr, "flush", "", "Durability flush interval (e.g. 1m, 30s)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("EDUBOT_DB_PATH")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "data/edubot.db" // default
	}

	if flushStr == "" {
		flushStr = os.Getenv("EDUBOT_FLUSH_INTERVAL")
	}
	if flushStr == "" {
		cfg.FlushInterval = time.Minute // default
	} else {
		interval, err := time.ParseDuration(flushStr)
		if err != nil {
			return Config{}, errors.New("invalid flush interval (use a Go duration like 1m)")
		}
		if interval <= 0 {
			return Config{}, errors.New("flush interval must be positive")
		}
		cfg.FlushInterval = interval
	}

	return cfg, nil
}
