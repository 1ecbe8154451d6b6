package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	ServerPort     string
	RedisAddr      string
	CacheTTL       time.Duration
	AllowedOrigins string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "taskboard_user"),
		DBPassword:     getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:         getEnv("DB_NAME", "taskboard_db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:       getEnvSeconds("CACHE_TTL_SECONDS", 300),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		log.Printf("⚠️  Invalid %s, using default of %d seconds", key, defaultSeconds)
	}
	return time.Duration(defaultSeconds) * time.Second
}
