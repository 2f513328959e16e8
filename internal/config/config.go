package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Airtable settings
	AirtableAPIKey         string        // AIRTABLE_API_KEY (required)
	AirtableBaseID         string        // AIRTABLE_BASE_ID (required)
	AirtableEventsTableID  string        // AIRTABLE_EVENTS_TABLE_ID (required)
	AirtableAliasesTableID string        // AIRTABLE_ALIASES_TABLE_ID (required)
	AirtableRateLimit      time.Duration // AIRTABLE_RATE_LIMIT_DELAY (default 200ms; 0 = disabled)
	AirtableMaxRetries     int           // AIRTABLE_MAX_RETRIES (default 3)
	AirtableTimeout        time.Duration // AIRTABLE_TIMEOUT_SECONDS (default 30s)

	HTTPAddr  string // CATALOG_HTTP_ADDR (default ":8080")
	AuthToken string // CATALOG_AUTH_TOKEN (optional, empty = auth disabled)
	NATSURL   string // CATALOG_NATS_URL (optional, empty = no events)
	DataDir   string // CATALOG_DATA_DIR (default "data/event-bible")

	// Cache settings
	CacheMaxSize int           // CATALOG_CACHE_MAX_SIZE (default 200)
	CacheTTL     time.Duration // CATALOG_CACHE_TTL (default 24h)

	// S3 snapshot mirror (enabled when bucket is set)
	S3Bucket   string // CATALOG_S3_BUCKET
	S3Endpoint string // CATALOG_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region   string // CATALOG_S3_REGION (default "us-east-1")
	S3Key      string // CATALOG_S3_KEY (default "event-bible/events.json")
}

func Load() (*Config, error) {
	c := &Config{
		AirtableAPIKey:         os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:         os.Getenv("AIRTABLE_BASE_ID"),
		AirtableEventsTableID:  os.Getenv("AIRTABLE_EVENTS_TABLE_ID"),
		AirtableAliasesTableID: os.Getenv("AIRTABLE_ALIASES_TABLE_ID"),
		HTTPAddr:               envOrDefault("CATALOG_HTTP_ADDR", ":8080"),
		AuthToken:              os.Getenv("CATALOG_AUTH_TOKEN"),
		NATSURL:                os.Getenv("CATALOG_NATS_URL"),
		DataDir:                envOrDefault("CATALOG_DATA_DIR", "data/event-bible"),
		S3Bucket:               os.Getenv("CATALOG_S3_BUCKET"),
		S3Endpoint:             os.Getenv("CATALOG_S3_ENDPOINT"),
		S3Region:               envOrDefault("CATALOG_S3_REGION", "us-east-1"),
		S3Key:                  envOrDefault("CATALOG_S3_KEY", "event-bible/events.json"),
	}

	for _, required := range []struct {
		key   string
		value string
	}{
		{"AIRTABLE_API_KEY", c.AirtableAPIKey},
		{"AIRTABLE_BASE_ID", c.AirtableBaseID},
		{"AIRTABLE_EVENTS_TABLE_ID", c.AirtableEventsTableID},
		{"AIRTABLE_ALIASES_TABLE_ID", c.AirtableAliasesTableID},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("%s is required", required.key)
		}
	}

	var err error
	if c.AirtableRateLimit, err = envDuration("AIRTABLE_RATE_LIMIT_DELAY", 200*time.Millisecond); err != nil {
		return nil, err
	}
	if c.AirtableMaxRetries, err = envInt("AIRTABLE_MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	timeoutSecs, err := envInt("AIRTABLE_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("AIRTABLE_TIMEOUT_SECONDS must be positive")
	}
	c.AirtableTimeout = time.Duration(timeoutSecs) * time.Second

	if c.CacheMaxSize, err = envInt("CATALOG_CACHE_MAX_SIZE", 200); err != nil {
		return nil, err
	}
	if c.CacheTTL, err = envDuration("CATALOG_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
