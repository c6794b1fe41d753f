// Package awsx constructs the AWS service clients used by the pipeline and
// adapts them to the small interfaces the domain packages consume. Clients
// are built once at startup and passed in by reference; nothing here is
// lazily initialized.
package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"

	sc "invoice-pipeline/internal/server/config"
)

// LoadAWSConfig resolves the SDK configuration for the region in cfg.
// Static credentials are only installed when both halves are present,
// otherwise the default provider chain applies.
func LoadAWSConfig(ctx context.Context, cfg *sc.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// NewS3Client builds the S3 client, pointing it at a custom endpoint when
// one is configured (MinIO and friends in local setups).
func NewS3Client(awsCfg aws.Config, cfg *sc.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})
}

// NewTextractClient builds the Textract client from the shared SDK config.
func NewTextractClient(awsCfg aws.Config) *textract.Client {
	return textract.NewFromConfig(awsCfg)
}
