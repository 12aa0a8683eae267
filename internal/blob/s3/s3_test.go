package s3

import (
	"errors"
	"net"
	"testing"

	"github.com/aws/smithy-go"

	"segpub/internal/blob"
)

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func TestClassifyConflict(t *testing.T) {
	got := classify(apiErr("PreconditionFailed"), "segments", "a/index.zip")
	if !errors.Is(got, blob.ErrKeyExists) {
		t.Fatalf("classify = %v, want ErrKeyExists", got)
	}
}

func TestClassifyTransient(t *testing.T) {
	for _, code := range []string{"SlowDown", "Throttling", "RequestTimeout", "InternalError", "ServiceUnavailable"} {
		if got := classify(apiErr(code), "segments", "k"); !blob.IsTransient(got) {
			t.Errorf("classify(%s) = %v, want transient", code, got)
		}
	}
	// Transport failure without any API response.
	opErr := &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}
	if got := classify(opErr, "segments", "k"); !blob.IsTransient(got) {
		t.Errorf("classify(net error) = %v, want transient", got)
	}
}

func TestClassifyPermanent(t *testing.T) {
	for _, code := range []string{"AccessDenied", "NoSuchBucket", "InvalidAccessKeyId"} {
		got := classify(apiErr(code), "segments", "k")
		if blob.IsTransient(got) {
			t.Errorf("classify(%s) classified transient", code)
		}
		if errors.Is(got, blob.ErrKeyExists) {
			t.Errorf("classify(%s) classified conflict", code)
		}
	}
}
