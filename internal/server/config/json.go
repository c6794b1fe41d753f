package config

import (
	"encoding/json"
	"os"
	"time"

	"invoice-pipeline/internal/flagx"
	"invoice-pipeline/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	InvoiceBucket               string         `json:"invoice_bucket"`
	AllowedFormats              []string       `json:"allowed_formats"`
	MaxFileSize                 int64          `json:"max_file_size"`
	TextractEnabled             bool           `json:"textract_enabled"`
	TextractConfidenceThreshold float64        `json:"textract_confidence_threshold"`
	TextractTimeout             timex.Duration `json:"textract_timeout"`
	AWSRegion                   string         `json:"aws_region"`
	AWSAccessKeyID              string         `json:"aws_access_key_id"`
	AWSSecretAccessKey          string         `json:"aws_secret_access_key"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.InvoiceBucket = c.InvoiceBucket
	config.AllowedFormats = c.AllowedFormats
	config.MaxFileSize = c.MaxFileSize
	config.TextractEnabled = c.TextractEnabled
	config.TextractConfidenceThreshold = c.TextractConfidenceThreshold
	config.TextractTimeout = time.Duration(c.TextractTimeout.Duration)
	config.AWSRegion = c.AWSRegion
	config.AWSAccessKeyID = c.AWSAccessKeyID
	config.AWSSecretAccessKey = c.AWSSecretAccessKey
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
