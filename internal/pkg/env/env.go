// Package env loads the .env file and answers configuration lookups for the
// rest of the application. Everything configurable in SubTally goes through
// GetEnv: the HTTP listener (APP_HOST, APP_PORT), the MySQL connection
// (DB_HOST, DB_USER, ...), the Redis cache (CACHE_HOST, CACHE_PORT), the
// SMTP account for reminder mail (SMTP_*), and the tuning knobs
// REMINDER_INTERVAL_HOURS and JOBQUEUE_WORKERS.
package env

import (
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv returns the value for key, preferring the loaded .env file over the
// process environment. The process environment still wins over the default so
// containerized deployments can override without a file.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile locates and reads the .env file. All three binaries (subtally,
// migrate, remind) call this first thing in main, so the candidate paths
// cover running from the project root as well as from a cmd/ directory.
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	panic("No .env file found in any of the expected locations")
}

// IsDev reports whether APP_ENV selects the development profile. Missing or
// unknown values count as production.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
