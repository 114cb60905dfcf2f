package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Optional catalog file imported at startup when the database is empty
	CatalogPath string

	// Visibility thresholds
	MaxRangeMeters              float64
	FieldOfViewHalfAngleDegrees float64

	// Radius search
	NearbyRadiusMeters    float64
	MaxNearbyRadiusMeters float64

	// Viewer sessions
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Request limits. Sample limits apply per viewer session; a compass
	// reports tens of times per second.
	SessionCreateLimitPerMinute int // Per client IP
	PositionRateLimitPerMinute  int
	HeadingRateLimitPerMinute   int
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:      getString("PORT", ":8080"),
		DBPath:    getString("DB_PATH", "./data/locator.db"),
		JWTSecret: getString("JWT_SECRET", "your-secret-key-change-in-production"),

		CatalogPath: os.Getenv("CATALOG_PATH"),

		MaxRangeMeters:              getFloat("MAX_RANGE_METERS", 1000),
		FieldOfViewHalfAngleDegrees: getFloat("FOV_HALF_ANGLE_DEGREES", 45),

		NearbyRadiusMeters:    getFloat("NEARBY_RADIUS_METERS", 50),
		MaxNearbyRadiusMeters: getFloat("MAX_NEARBY_RADIUS_METERS", 5000),

		SessionTTL:    getDuration("SESSION_TTL", 10*time.Minute),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		SessionCreateLimitPerMinute: getInt("SESSION_CREATE_LIMIT_PER_MINUTE", 600),
		PositionRateLimitPerMinute:  getInt("POSITION_RATE_LIMIT_PER_MINUTE", 120),
		HeadingRateLimitPerMinute:   getInt("HEADING_RATE_LIMIT_PER_MINUTE", 3600),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %v", key, v, def)
		return def
	}
	return f
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %v", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using default %v", key, v, def)
		return def
	}
	return d
}
