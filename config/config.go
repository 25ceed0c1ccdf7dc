package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var Config = PixPalConfig{
	LogLevel:         zerolog.InfoLevel,
	CheckCRC:         true,
	CompressionLevel: 0,
	Fetch: FetchConfig{
		Retries:    3,
		MinBackoff: 200 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Timeout:    30 * time.Second,
	},
	S3: S3Config{
		Region: "us-east-1",
	},
}

func init() {
	Config = FromEnv(Config, os.Getenv)
}

// FromEnv overlays PIXPAL_* variables onto base. Malformed values are ignored.
func FromEnv(base PixPalConfig, getenv func(string) string) PixPalConfig {
	cfg := base

	if v := getenv("PIXPAL_LOG_LEVEL"); v != "" {
		if level, err := zerolog.ParseLevel(v); err == nil {
			cfg.LogLevel = level
		}
	}
	if v := getenv("PIXPAL_CHECK_CRC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CheckCRC = b
		}
	}
	if v := getenv("PIXPAL_COMPRESSION_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CompressionLevel = n
		}
	}
	if v := getenv("PIXPAL_FETCH_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Fetch.Retries = n
		}
	}
	if v := getenv("PIXPAL_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fetch.Timeout = d
		}
	}

	strs := map[string]*string{
		"PIXPAL_S3_ENDPOINT": &cfg.S3.Endpoint,
		"PIXPAL_S3_REGION":   &cfg.S3.Region,
		"PIXPAL_S3_BUCKET":   &cfg.S3.Bucket,
		"PIXPAL_S3_KEY":      &cfg.S3.Key,
		"PIXPAL_S3_SECRET":   &cfg.S3.Secret,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	return cfg
}
