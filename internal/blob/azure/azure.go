// Package azure implements blob.Uploader on Azure Blob Storage.
//
// Conflict detection for overwrite=false uses an If-None-Match: * access
// condition, so the exists check and the write are one atomic operation on
// the service side. Error classification: BlobAlreadyExists and
// ConditionNotMet are conflicts; ServerBusy, timeouts, 408/429/5xx and
// transport-level failures are transient; everything else (auth, missing
// container) is permanent.
package azure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azsdkblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"segpub/internal/blob"
	"segpub/internal/logging"
)

// Factory parameter keys.
const (
	ParamAccount          = "account"
	ParamKey              = "key"
	ParamConnectionString = "connectionString"
	ParamServiceURL       = "serviceURL" // override for azurite or sovereign clouds
)

var ErrMissingCredentials = errors.New("azure: need either connectionString or account+key")

type Uploader struct {
	client *azblob.Client
	logger *slog.Logger
}

var _ blob.Uploader = (*Uploader)(nil)

// NewFactory returns a factory that creates Azure-backed uploaders.
func NewFactory() blob.UploaderFactory {
	return func(params map[string]string, logger *slog.Logger) (blob.Uploader, error) {
		client, err := newClient(params)
		if err != nil {
			return nil, err
		}
		return NewWithClient(client, logger), nil
	}
}

// NewWithClient wraps an existing azblob client.
func NewWithClient(client *azblob.Client, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: logging.Default(logger).With("component", "azure-uploader"),
	}
}

func newClient(params map[string]string) (*azblob.Client, error) {
	if cs := params[ParamConnectionString]; cs != "" {
		return azblob.NewClientFromConnectionString(cs, nil)
	}

	account, key := params[ParamAccount], params[ParamKey]
	if account == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, fmt.Errorf("azure: bad shared key: %w", err)
	}
	serviceURL := params[ParamServiceURL]
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	}
	return azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
}

func (u *Uploader) Upload(ctx context.Context, localFile, container, key string, overwrite bool) error {
	f, err := os.Open(filepath.Clean(localFile))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	opts := &azblob.UploadFileOptions{}
	if !overwrite {
		opts.AccessConditions = &azsdkblob.AccessConditions{
			ModifiedAccessConditions: &azsdkblob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		}
	}

	u.logger.Debug("uploading blob", "container", container, "key", key, "overwrite", overwrite)
	if _, err := u.client.UploadFile(ctx, container, key, f, opts); err != nil {
		return classify(err, container, key)
	}
	return nil
}

func classify(err error, container, key string) error {
	if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
		return fmt.Errorf("%s/%s: %w", container, key, blob.ErrKeyExists)
	}
	if bloberror.HasCode(err, bloberror.ServerBusy, bloberror.OperationTimedOut, bloberror.InternalError) {
		return blob.Transient(err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusTooManyRequests,
			respErr.StatusCode == http.StatusRequestTimeout,
			respErr.StatusCode >= http.StatusInternalServerError:
			return blob.Transient(err)
		}
		return err
	}

	// No HTTP response at all: the request never completed (DNS, reset,
	// deadline). Safe to retry against a deterministic key.
	return blob.Transient(err)
}
