package storage

import (
	"bytes"
	"context"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

// GCSExporter writes rendered diagrams to a bucket and returns their public URL.
type GCSExporter struct {
	client *gcs.Client
	bucket string
}

func NewGCSExporter(client *gcs.Client, bucket string) *GCSExporter {
	return &GCSExporter{client: client, bucket: bucket}
}

func (e *GCSExporter) Upload(ctx context.Context, objectPath, contentType string, body []byte) (string, error) {
	return helpers.UploadObject(ctx, e.client, e.bucket, objectPath, contentType, bytes.NewReader(body))
}
