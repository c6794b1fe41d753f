package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// HeadObjectAPI is the slice of the S3 API needed to read upload-time
// object metadata. *s3.Client satisfies it.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// MetadataFetcher reads the user metadata attached to an object at upload
// time (the transaction-type classification tag lives there).
type MetadataFetcher struct {
	client HeadObjectAPI
}

func NewMetadataFetcher(client HeadObjectAPI) *MetadataFetcher {
	return &MetadataFetcher{client: client}
}

// ObjectMetadata returns the object's user metadata map. S3 lower-cases
// metadata keys on the way in, so callers can look up lower-case names.
func (f *MetadataFetcher) ObjectMetadata(ctx context.Context, bucket, key string) (map[string]string, error) {
	out, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %s/%s: %w", bucket, key, err)
	}
	if out.Metadata == nil {
		return map[string]string{}, nil
	}
	return out.Metadata, nil
}
