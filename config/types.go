package config

import (
	"time"

	"github.com/rs/zerolog"
)

type PixPalConfig struct {
	LogLevel zerolog.Level

	// Validate chunk CRC-32 values while decoding.
	CheckCRC bool

	// IDAT compression: 0 default, -1 none, -2 fastest, -3 smallest, 1-9 zlib levels.
	CompressionLevel int

	Fetch FetchConfig
	S3    S3Config
}

type FetchConfig struct {
	Retries    int
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Timeout    time.Duration
}

type S3Config struct {
	Endpoint string
	Region   string
	Bucket   string
	Key      string
	Secret   string
}
