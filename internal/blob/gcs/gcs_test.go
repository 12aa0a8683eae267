package gcs

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"

	"segpub/internal/blob"
)

func TestClassifyConflict(t *testing.T) {
	err := &googleapi.Error{Code: 412, Message: "conditionNotMet"}
	got := classify(err, "segments", "a/index.zip")
	if !errors.Is(got, blob.ErrKeyExists) {
		t.Fatalf("classify = %v, want ErrKeyExists", got)
	}
}

func TestClassifyTransient(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503} {
		err := &googleapi.Error{Code: code}
		if got := classify(err, "segments", "k"); !blob.IsTransient(got) {
			t.Errorf("classify(code=%d) = %v, want transient", code, got)
		}
	}
	// Wrapped API errors must still classify.
	wrapped := fmt.Errorf("writer close: %w", &googleapi.Error{Code: 503})
	if got := classify(wrapped, "segments", "k"); !blob.IsTransient(got) {
		t.Errorf("classify(wrapped 503) = %v, want transient", got)
	}
	if got := classify(errors.New("broken pipe"), "segments", "k"); !blob.IsTransient(got) {
		t.Errorf("classify(transport error) = %v, want transient", got)
	}
}

func TestClassifyPermanent(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404} {
		err := &googleapi.Error{Code: code}
		got := classify(err, "segments", "k")
		if blob.IsTransient(got) {
			t.Errorf("classify(code=%d) classified transient", code)
		}
		if errors.Is(got, blob.ErrKeyExists) {
			t.Errorf("classify(code=%d) classified conflict", code)
		}
	}
}
