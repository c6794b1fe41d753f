package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"invoice-pipeline/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-b string   invoice upload bucket
//	-f string   allowed file formats, comma-separated (e.g., "pdf,png")
//	-m int      max accepted file size, bytes
//	-x bool     enable Textract OCR
//	-t int      Textract call timeout, seconds
//	-g string   AWS region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The timeout flag is accepted as an integer in seconds and then converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-f", "-m", "-x", "-t", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.InvoiceBucket, "b", config.InvoiceBucket, "invoice upload bucket")

	allowedFormats := fs.String("f", strings.Join(config.AllowedFormats, ","), "allowed file formats, comma-separated")

	fs.Int64Var(&config.MaxFileSize, "m", config.MaxFileSize, "max accepted file size in bytes")
	fs.BoolVar(&config.TextractEnabled, "x", config.TextractEnabled, "enable Textract OCR")

	textractTimeout := fs.Int("t", int(config.TextractTimeout.Seconds()), "textract_timeout (in seconds)")

	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedFormats = splitFormats(*allowedFormats)
	config.TextractTimeout = time.Duration(*textractTimeout) * time.Second
}
