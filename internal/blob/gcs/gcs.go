// Package gcs implements blob.Uploader on Google Cloud Storage.
//
// Conflict detection for overwrite=false uses a DoesNotExist generation
// precondition; the service answers 412 when the object exists. 408/429/5xx
// responses and transport failures are transient; everything else is
// permanent.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"segpub/internal/blob"
	"segpub/internal/logging"
)

// Factory parameter keys.
const (
	ParamCredentialsFile = "credentialsFile" // service account JSON; default chain otherwise
	ParamEndpoint        = "endpoint"        // override for fake-gcs-server
)

type Uploader struct {
	client *storage.Client
	logger *slog.Logger
}

var _ blob.Uploader = (*Uploader)(nil)

// NewFactory returns a factory that creates GCS-backed uploaders.
func NewFactory() blob.UploaderFactory {
	return func(params map[string]string, logger *slog.Logger) (blob.Uploader, error) {
		var opts []option.ClientOption
		if cf := params[ParamCredentialsFile]; cf != "" {
			opts = append(opts, option.WithCredentialsFile(cf))
		}
		if ep := params[ParamEndpoint]; ep != "" {
			opts = append(opts, option.WithEndpoint(ep), option.WithoutAuthentication())
		}
		client, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("gcs: new client: %w", err)
		}
		return NewWithClient(client, logger), nil
	}
}

// NewWithClient wraps an existing GCS client.
func NewWithClient(client *storage.Client, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: logging.Default(logger).With("component", "gcs-uploader"),
	}
}

func (u *Uploader) Upload(ctx context.Context, localFile, container, key string, overwrite bool) error {
	f, err := os.Open(filepath.Clean(localFile))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	obj := u.client.Bucket(container).Object(key)
	if !overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	u.logger.Debug("uploading object", "bucket", container, "key", key, "overwrite", overwrite)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return classify(err, container, key)
	}
	if err := w.Close(); err != nil {
		return classify(err, container, key)
	}
	return nil
}

func classify(err error, container, key string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusPreconditionFailed:
			return fmt.Errorf("%s/%s: %w", container, key, blob.ErrKeyExists)
		case apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code == http.StatusRequestTimeout,
			apiErr.Code >= http.StatusInternalServerError:
			return blob.Transient(err)
		}
		return err
	}

	// No structured API error; the write died in transit.
	return blob.Transient(err)
}
