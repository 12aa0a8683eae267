// Package s3 implements blob.Uploader on Amazon S3 and S3-compatible
// stores.
//
// Conflict detection for overwrite=false uses a conditional write
// (If-None-Match: *); the store answers 412 PreconditionFailed when the key
// exists. Throttling and 5xx-shaped API errors are transient; auth and
// missing-bucket errors are permanent.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"segpub/internal/blob"
	"segpub/internal/logging"
)

// Factory parameter keys.
const (
	ParamRegion       = "region"
	ParamEndpoint     = "endpoint"     // custom endpoint for minio et al.
	ParamAccessKey    = "accessKey"    // static credentials; default chain otherwise
	ParamSecretKey    = "secretKey"
	ParamUsePathStyle = "usePathStyle" // "true" for most S3-compatible stores
)

type Uploader struct {
	client *awss3.Client
	logger *slog.Logger
}

var _ blob.Uploader = (*Uploader)(nil)

// NewFactory returns a factory that creates S3-backed uploaders.
func NewFactory() blob.UploaderFactory {
	return func(params map[string]string, logger *slog.Logger) (blob.Uploader, error) {
		client, err := newClient(params)
		if err != nil {
			return nil, err
		}
		return NewWithClient(client, logger), nil
	}
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(client *awss3.Client, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: logging.Default(logger).With("component", "s3-uploader"),
	}
}

func newClient(params map[string]string) (*awss3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := params[ParamRegion]; region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if ak := params[ParamAccessKey]; ak != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, params[ParamSecretKey], ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if endpoint := params[ParamEndpoint]; endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if v, _ := strconv.ParseBool(params[ParamUsePathStyle]); v {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}
	return awss3.NewFromConfig(cfg, s3Opts...), nil
}

func (u *Uploader) Upload(ctx context.Context, localFile, container, key string, overwrite bool) error {
	f, err := os.Open(filepath.Clean(localFile))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	in := &awss3.PutObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
		Body:   f,
	}
	if !overwrite {
		in.IfNoneMatch = aws.String("*")
	}

	u.logger.Debug("uploading object", "bucket", container, "key", key, "overwrite", overwrite)
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return classify(err, container, key)
	}
	return nil
}

func classify(err error, container, key string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed":
			return fmt.Errorf("%s/%s: %w", container, key, blob.ErrKeyExists)
		case "SlowDown", "Throttling", "ThrottlingException",
			"RequestTimeout", "RequestTimeoutException",
			"InternalError", "ServiceUnavailable":
			return blob.Transient(err)
		}

		var respErr *smithyhttp.ResponseError
		if errors.As(err, &respErr) && respErr.HTTPStatusCode() >= 500 {
			return blob.Transient(err)
		}
		return err
	}

	// Request never produced an API response; retry is safe.
	return blob.Transient(err)
}
