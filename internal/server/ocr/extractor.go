// Package ocr invokes the external text-detection service and aggregates
// its output into a transient extraction result.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"invoice-pipeline/internal/logging"
	"invoice-pipeline/internal/server/models"
)

// TextDetector is the slice of the Textract API the extractor needs.
// *textract.Client satisfies it.
type TextDetector interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Extractor runs DetectDocumentText against a document already sitting in
// object storage and computes the document-level confidence: the arithmetic
// mean over LINE blocks only, 0 when the document has none.
type Extractor struct {
	client TextDetector
	logger logging.Logger
}

func NewExtractor(client TextDetector, logger logging.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// Extract performs one synchronous OCR call. Any service failure (network,
// throttling, server error) is returned as-is; the caller treats it as
// non-fatal for the batch.
func (e *Extractor) Extract(ctx context.Context, bucket, key string) (*models.ExtractionResult, error) {
	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect document text: %w", err)
	}

	var (
		texts       []string
		confidences []float64
	)
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		texts = append(texts, aws.ToString(block.Text))
		confidences = append(confidences, float64(aws.ToFloat32(block.Confidence)))
	}

	result := &models.ExtractionResult{
		Text:            strings.Join(texts, " "),
		LineConfidences: confidences,
		Confidence:      mean(confidences),
		BlockCount:      len(out.Blocks),
		LineCount:       len(texts),
	}

	e.logger.Info(ctx, "textract completed",
		"bucket", bucket, "key", key,
		"blocks", result.BlockCount, "lines", result.LineCount,
		"avg_confidence", result.Confidence)

	return result, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
