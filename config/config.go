package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts no proxy.
	TrustedProxies []string

	// MongoDB
	MongoURI          string
	DBName            string
	MongoTransactions bool

	// Redis (optional, enables rate limiting)
	RedisURL string

	// Admin access
	AdminPassword      string
	AdminPasswordHash  string
	AdminSessionSecret string
	AdminSessionTTL    time.Duration
	AdminMaxFailures   int
	AdminFailureWindow time.Duration

	// Uploads
	UploadDir      string
	UploadMaxBytes int64

	// Cloudinary (optional, replaces local disk storage)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Events
	EventDefaultDuration time.Duration

	// Testimonials
	TestimonialWindow time.Duration

	// Logging and monitoring
	LogLevel       string
	MetricsEnabled bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", "*"),

		TrustedProxies: getEnvAsList("TRUSTED_PROXIES", ""),

		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "culture_events"),
		MongoTransactions: getEnvAsBool("MONGO_TRANSACTIONS", true),

		RedisURL: getEnv("REDIS_URL", ""),

		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminSessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),
		AdminSessionTTL:    getEnvAsDuration("ADMIN_SESSION_TTL", "12h"),
		AdminMaxFailures:   getEnvAsInt("ADMIN_MAX_FAILURES", 10),
		AdminFailureWindow: getEnvAsDuration("ADMIN_FAILURE_WINDOW", "15m"),

		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		UploadMaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024)),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		EventDefaultDuration: getEnvAsDuration("EVENT_DEFAULT_DURATION", "6h"),

		TestimonialWindow: getEnvAsDuration("TESTIMONIAL_WINDOW", "1h"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

// Validate rejects configurations that would leave the admin surface open.
func (c *Config) Validate() error {
	var errs []error
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("config: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"))
	}
	if len(c.AdminSessionSecret) < 32 {
		errs = append(errs, errors.New("config: ADMIN_SESSION_SECRET must be at least 32 characters"))
	}
	if c.EventDefaultDuration <= 0 {
		errs = append(errs, errors.New("config: EVENT_DEFAULT_DURATION must be positive"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("config: UPLOAD_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
