package azure

import (
	"errors"
	"net"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"segpub/internal/blob"
)

func respErr(code bloberror.Code, status int) error {
	return &azcore.ResponseError{ErrorCode: string(code), StatusCode: status}
}

func TestClassifyConflict(t *testing.T) {
	for _, err := range []error{
		respErr(bloberror.BlobAlreadyExists, 409),
		respErr(bloberror.ConditionNotMet, 412),
	} {
		got := classify(err, "segments", "a/index.zip")
		if !errors.Is(got, blob.ErrKeyExists) {
			t.Errorf("classify(%v) = %v, want ErrKeyExists", err, got)
		}
		if blob.IsTransient(got) {
			t.Errorf("conflict classified transient: %v", got)
		}
	}
}

func TestClassifyTransient(t *testing.T) {
	for _, err := range []error{
		respErr(bloberror.ServerBusy, 503),
		respErr(bloberror.OperationTimedOut, 500),
		respErr(bloberror.InternalError, 500),
		&azcore.ResponseError{StatusCode: 429},
		&azcore.ResponseError{StatusCode: 502},
		&net.OpError{Op: "dial", Err: errors.New("connection refused")},
	} {
		if got := classify(err, "segments", "k"); !blob.IsTransient(got) {
			t.Errorf("classify(%v) = %v, want transient", err, got)
		}
	}
}

func TestClassifyPermanent(t *testing.T) {
	for _, err := range []error{
		respErr(bloberror.AuthenticationFailed, 403),
		respErr(bloberror.ContainerNotFound, 404),
		&azcore.ResponseError{StatusCode: 400},
	} {
		got := classify(err, "segments", "k")
		if blob.IsTransient(got) {
			t.Errorf("classify(%v) classified transient", err)
		}
		if errors.Is(got, blob.ErrKeyExists) {
			t.Errorf("classify(%v) classified conflict", err)
		}
	}
}

func TestFactoryRequiresCredentials(t *testing.T) {
	_, err := NewFactory()(map[string]string{}, nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestFactoryAcceptsAccountAndKey(t *testing.T) {
	// Base64 "secret" — credential construction validates the key encoding.
	up, err := NewFactory()(map[string]string{
		ParamAccount: "devstore",
		ParamKey:     "c2VjcmV0",
	}, nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if up == nil {
		t.Fatal("factory returned nil uploader")
	}
}
