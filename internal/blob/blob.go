// Package blob defines the uploader seam between the segment publisher and
// concrete blob stores, together with the error taxonomy the retry layer
// discriminates on.
//
// Implementations live in subpackages (azure, s3, gcs, memory) and must
// classify every upload failure into one of three kinds:
//
//   - Conflict: the key exists and overwrite was not permitted. Wrapped
//     around ErrKeyExists; never retried.
//   - Transient: throttling, timeouts, 5xx, transport-level failures.
//     Wrapped via Transient; retrying with identical inputs may succeed.
//   - Permanent: everything else (auth, missing container, bad request).
//     Returned unwrapped; retrying is pointless.
//
// Classification is per store: each backend owns the mapping from its SDK's
// error codes to this taxonomy, so neither the publisher nor the retry
// policy ever imports an SDK.
package blob

import (
	"context"
	"errors"
	"log/slog"
)

// ErrKeyExists reports that an upload with overwrite=false found the target
// key already present. Implementations must fail with this, never silently
// skip the write.
var ErrKeyExists = errors.New("key already exists")

// Uploader writes a local file to a container under a key.
//
// With overwrite=false the upload must fail with an error wrapping
// ErrKeyExists if the key is already present. Implementations must be safe
// for concurrent use; the publisher runs many publishes in parallel against
// one Uploader.
type Uploader interface {
	Upload(ctx context.Context, localFile, container, key string, overwrite bool) error
}

// UploaderFactory creates an Uploader from configuration parameters.
// Factories validate required params, apply defaults, and return a fully
// constructed uploader or a descriptive error. Factories must not perform
// I/O beyond client construction.
type UploaderFactory func(params map[string]string, logger *slog.Logger) (Uploader, error)

// TransientError marks an upload failure as plausibly recoverable by
// retrying with identical inputs.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient store error: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is classified transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
