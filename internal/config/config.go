package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBDriver        string        // "mysql" or "sqlite"
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	DBPath          string        // sqlite file path
	JWTSecret       string        // secret used to sign JWTs
	AccessTTLMin    int           // access token time-to-live in minutes
	RefreshTTLDays  int           // refresh token time-to-live in days
	BcryptCost      int           // bcrypt cost for password hashing
	LogLevel        string        // slog level name
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("config: ignoring %s: %v", p, err)
		}
	}
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),  // environment (dev/test/prod)
		Port:            must("APP_PORT"), // port to bind the HTTP server
		DBDriver:        strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		JWTSecret:       must("JWT_SECRET"), // secret used for signing JWTs
		AccessTTLMin:    envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays:  envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverSQLite:
		cfg.DBPath = envStr("DB_PATH", "hotel.db")
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	if cfg.AccessTTLMin <= 0 {
		cfg.AccessTTLMin = 60
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
