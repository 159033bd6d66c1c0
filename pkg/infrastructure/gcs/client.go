// Package gcs wraps the Google Cloud Storage client used for model artifact
// retrieval. The client is constructed explicitly and injected; there is no
// process-global instance.
package gcs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

type Client struct {
	client *storage.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage client")
	}
	return &Client{client: client}, nil
}

// Download fetches one object into destPath, creating parent directories.
func (c *Client) Download(ctx context.Context, bucket, object, destPath string) error {
	reader, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to open gs://%s/%s", bucket, object)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", destPath)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", destPath)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return errors.Wrapf(err, "failed to download gs://%s/%s", bucket, object)
	}
	return out.Close()
}

// Upload stores a local file under the given object key.
func (c *Client) Upload(ctx context.Context, bucket, object, srcPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", srcPath)
	}
	defer in.Close()

	writer := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(writer, in); err != nil {
		writer.Close()
		return errors.Wrapf(err, "failed to upload gs://%s/%s", bucket, object)
	}
	return errors.Wrapf(writer.Close(), "failed to finalize gs://%s/%s", bucket, object)
}

func (c *Client) Close() error {
	return c.client.Close()
}
