package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Storage backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	StorageBackend    string
	MongoURI          string
	MongoDatabase     string
	MongoCollection   string
	DBURL             string
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	TMDBURL         string
	TMDBToken       string
	TMDBLanguage    string
	TMDBTimeoutSecs int

	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	IdleTimeoutSecs  int
}

// LoadEnvFile merges a dotenv file into the process environment. Variables
// that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := read()
	if err := cfg.validateStorage(); err != nil {
		return Config{}, err
	}
	if cfg.TMDBToken == "" {
		return Config{}, errors.New("TMDB_API_TOKEN is required")
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, errors.New("TMDB_TIMEOUT_SECS must be positive")
	}
	return cfg, nil
}

// LoadStorage is Load without the TMDB requirements, for commands that only
// touch the database.
func LoadStorage() (Config, error) {
	cfg := read()
	if err := cfg.validateStorage(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func read() Config {
	return Config{
		Port:              getEnv("PORT", "3030"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", BackendMongo)),
		MongoURI:          os.Getenv("MONGODB_URI"),
		MongoDatabase:     getEnv("MONGODB_DATABASE", "movielog"),
		MongoCollection:   getEnv("MONGODB_COLLECTION", "movies"),
		DBURL:             os.Getenv("DB_URL"),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		TMDBURL:           getEnv("TMDB_API_URL", "https://api.themoviedb.org/3"),
		TMDBToken:         os.Getenv("TMDB_API_TOKEN"),
		TMDBLanguage:      getEnv("TMDB_LANGUAGE", "de-DE"),
		TMDBTimeoutSecs:   getEnvInt("TMDB_TIMEOUT_SECS", 5),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
	}
}

func (cfg Config) validateStorage() error {
	switch cfg.StorageBackend {
	case BackendMongo:
		if cfg.MongoURI == "" {
			return errors.New("MONGODB_URI is required")
		}
		if cfg.MongoDatabase == "" || cfg.MongoCollection == "" {
			return errors.New("MONGODB_DATABASE and MONGODB_COLLECTION must not be empty")
		}
	case BackendPostgres:
		if cfg.DBURL == "" {
			return errors.New("DB_URL is required")
		}
		if cfg.DBMaxConns <= 0 {
			return errors.New("DB_MAX_CONNS must be positive")
		}
		if cfg.DBMinConns < 0 {
			return errors.New("DB_MIN_CONNS must be non-negative")
		}
		if cfg.DBMinConns > cfg.DBMaxConns {
			return errors.New("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
		}
		if cfg.DBStatementCache < 0 {
			return errors.New("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
		}
	default:
		return errors.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendMongo, BackendPostgres, cfg.StorageBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
