package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	ServerPort         string
	ProjectsServiceURL string
	PermissionTimeout  time.Duration
	AuthPolicy         string
	ServiceSecret      string
}

// Authorization policies for requests without an acting user.
const (
	// PolicyTrusted skips permission checks for system callers.
	PolicyTrusted = "trusted"
	// PolicyEnforce denies every request without an acting user.
	PolicyEnforce = "enforce"
)

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "sprinthub_user"),
		DBPassword:         getEnv("DB_PASSWORD", "sprinthub_pass"),
		DBName:             getEnv("DB_NAME", "sprinthub_db"),
		ServerPort:         getEnv("SERVER_PORT", "8084"),
		ProjectsServiceURL: getEnv("PROJECTS_SERVICE_URL", "http://localhost:8083"),
		PermissionTimeout:  getEnvSeconds("PERMISSION_TIMEOUT_SECONDS", 5),
		AuthPolicy:         getEnv("AUTH_POLICY", PolicyTrusted),
		ServiceSecret:      getEnv("SERVICE_TOKEN_SECRET", "supersecretkey"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultVal) * time.Second
}
