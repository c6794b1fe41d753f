package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it. Unlike the JSON overlay, only variables that are
// actually set override the current value.
//
// Recognized variables:
//
//	HTTP_ADDR, DATABASE_DSN, INVOICE_BUCKET, ALLOWED_FORMATS (comma-separated),
//	MAX_FILE_SIZE (bytes), TEXTRACT_ENABLED (strconv.ParseBool syntax),
//	TEXTRACT_CONFIDENCE_THRESHOLD, TEXTRACT_TIMEOUT (time.ParseDuration syntax),
//	AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("INVOICE_BUCKET"); ok {
		config.InvoiceBucket = v
	}
	if v, ok := os.LookupEnv("ALLOWED_FORMATS"); ok {
		config.AllowedFormats = splitFormats(v)
	}
	if v, ok := os.LookupEnv("MAX_FILE_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxFileSize = n
		}
	}
	if v, ok := os.LookupEnv("TEXTRACT_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.TextractEnabled = b
		}
	}
	if v, ok := os.LookupEnv("TEXTRACT_CONFIDENCE_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.TextractConfidenceThreshold = f
		}
	}
	if v, ok := os.LookupEnv("TEXTRACT_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TextractTimeout = d
		}
	}
	if v, ok := os.LookupEnv("AWS_REGION"); ok {
		config.AWSRegion = v
	}
	if v, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
		config.AWSAccessKeyID = v
	}
	if v, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
		config.AWSSecretAccessKey = v
	}
	if v, ok := os.LookupEnv("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
}

func splitFormats(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
