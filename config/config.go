// Package config loads service configuration from the environment.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port                string
	GinMode             string
	DataDir             string
	StatsFile           string
	DevMode             bool
	RateLimitRPS        float64
	RateLimitBurst      int
	FetchTimeout        time.Duration
	CollaboratorTimeout time.Duration
	AuditTimeout        time.Duration
	PageCacheTTL        time.Duration
	PageCacheSize       int
	StatsRetainMonths   int
	CORSAllowOrigins    []string
}

// LoadEnv loads .env.development for local development, falling back to .env.
// Variables already set in the environment win over both files.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Load reads configuration from environment variables with defaults
func Load() Config {
	dataDir := getEnv("DATA_DIR", "./data")

	statsFile := getEnv("STATS_FILE", "statistics.json")
	if !filepath.IsAbs(statsFile) {
		statsFile = filepath.Join(dataDir, statsFile)
	}

	return Config{
		Port:                getEnv("PORT", "3004"),
		GinMode:             ginMode(getEnv("GIN_MODE", gin.ReleaseMode)),
		DataDir:             dataDir,
		StatsFile:           statsFile,
		DevMode:             getEnv("DEV_MODE", "") == "true",
		RateLimitRPS:        getFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:      getInt("RATE_LIMIT_BURST", 5),
		FetchTimeout:        getDuration("FETCH_TIMEOUT", 15*time.Second),
		CollaboratorTimeout: getDuration("COLLABORATOR_TIMEOUT", 10*time.Second),
		AuditTimeout:        getDuration("AUDIT_TIMEOUT", 30*time.Second),
		PageCacheTTL:        getDuration("PAGE_CACHE_TTL", 30*time.Minute),
		PageCacheSize:       getInt("PAGE_CACHE_SIZE", 1000),
		StatsRetainMonths:   getInt("STATS_RETAIN_MONTHS", 2),
		CORSAllowOrigins:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %g", key, raw, def)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return v
}

func ginMode(raw string) string {
	switch raw {
	case gin.DebugMode, gin.TestMode, gin.ReleaseMode:
		return raw
	default:
		return gin.ReleaseMode
	}
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
