package config

import (
	"os"
	"time"
)

type Features struct {
	AuthEnabled    bool
	MetricsEnabled bool
}

type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	LogLevel       string
	LogFormat      string
	RegistryFile   string
	SampleInterval time.Duration
	FetchTimeout   time.Duration
	Features       Features
}

func LoadFeatures() Features {
	return Features{
		AuthEnabled:    os.Getenv("AUTH_ENABLED") == "true",
		MetricsEnabled: os.Getenv("METRICS_ENABLED") != "false",
	}
}

func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RegistryFile:   os.Getenv("JOB_REGISTRY_FILE"),
		SampleInterval: getDuration("HEALTH_SAMPLE_INTERVAL", time.Minute),
		FetchTimeout:   getDuration("FETCH_TIMEOUT", 5*time.Second),
		Features:       LoadFeatures(),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration falls back on unparsable or non-positive values.
func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
