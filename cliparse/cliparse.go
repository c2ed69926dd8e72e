package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// External scoring ledger; defaults to the voting database
	ScoringDatabaseURL  string
	ScoringDatabaseType string

	AdminKeySalt string

	// Current event when no eventDate is supplied and none is stored
	EventDate string

	PenaltyPoints   int
	PenaltyCategory string
	QuorumRatio     float64
	// Guess stage length when the decision deadline advances it automatically
	GuessMinutes float64

	CORSOrigins []string

	PrintAdminKey bool
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := flag.NewFlagSet("hacknight", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ScoringDatabaseURL, "scoring-d", "", "Scoring ledger database URL")
	fs.StringVar(&cfg.ScoringDatabaseType, "scoring-t", "", "Scoring ledger database type")
	fs.StringVar(&origins, "cors", "", "Comma separated allowed origins")

	// Event policy
	fs.StringVar(&cfg.EventDate, "event", "", "Current event date")
	fs.IntVar(&cfg.PenaltyPoints, "penalty-points", 0, "Points deducted when the community loses")
	fs.StringVar(&cfg.PenaltyCategory, "penalty-category", "", "Scoring category for penalties")
	fs.Float64Var(&cfg.QuorumRatio, "quorum", 0, "Share of checked-in members required in the guess stage")
	fs.Float64Var(&cfg.GuessMinutes, "guess-minutes", 0, "Guess stage length after an automatic transition")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.BoolVar(&cfg.PrintAdminKey, "print-admin-key", false, "Print the admin key and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if cfg.ScoringDatabaseURL == "" {
		cfg.ScoringDatabaseURL = os.Getenv("SCORING_DATABASE_URL")
	}
	if cfg.ScoringDatabaseType == "" {
		cfg.ScoringDatabaseType = os.Getenv("SCORING_DATABASE_TYPE")
	}
	if cfg.ScoringDatabaseURL == "" {
		cfg.ScoringDatabaseURL = cfg.DatabaseURL
		if cfg.ScoringDatabaseType == "" {
			cfg.ScoringDatabaseType = cfg.DatabaseType
		}
	}
	if cfg.ScoringDatabaseType == "" {
		cfg.ScoringDatabaseType = "sqlite"
	}

	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.EventDate == "" {
		cfg.EventDate = os.Getenv("EVENT_DATE")
	}
	if cfg.EventDate == "" {
		cfg.EventDate = "upcoming"
	}

	if cfg.PenaltyPoints == 0 {
		n, err := envInt("PENALTY_POINTS", 10)
		if err != nil {
			return Config{}, err
		}
		cfg.PenaltyPoints = n
	}
	if cfg.PenaltyPoints < 0 {
		return Config{}, errors.New("penalty points must be positive")
	}
	if cfg.PenaltyCategory == "" {
		cfg.PenaltyCategory = os.Getenv("PENALTY_CATEGORY")
		if cfg.PenaltyCategory == "" {
			cfg.PenaltyCategory = "penalty"
		}
	}

	if cfg.QuorumRatio == 0 {
		f, err := envFloat("QUORUM_RATIO", 0.8)
		if err != nil {
			return Config{}, err
		}
		cfg.QuorumRatio = f
	}
	if cfg.QuorumRatio <= 0 || cfg.QuorumRatio > 1 {
		return Config{}, errors.New("quorum ratio must be in (0, 1]")
	}

	if cfg.GuessMinutes == 0 {
		f, err := envFloat("GUESS_MINUTES", 5)
		if err != nil {
			return Config{}, err
		}
		cfg.GuessMinutes = f
	}
	if cfg.GuessMinutes < 0 {
		return Config{}, errors.New("guess minutes must not be negative")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}
