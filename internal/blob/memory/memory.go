// Package memory provides an in-memory blob.Uploader. It mirrors the
// conflict and classification semantics of the real backends and exists so
// publisher behavior (retry, conflicts, cleanup) can be tested without a
// cloud store. Failures can be scripted per call.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"segpub/internal/blob"
	"segpub/internal/logging"
)

type Uploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	scripts []error
	calls   int
	logger  *slog.Logger
}

var _ blob.Uploader = (*Uploader)(nil)

func New(logger *slog.Logger) *Uploader {
	return &Uploader{
		objects: make(map[string][]byte),
		logger:  logging.Default(logger).With("component", "memory-uploader"),
	}
}

// FailWith scripts errors for upcoming Upload calls, consumed in order.
// A nil entry means "this call succeeds".
func (u *Uploader) FailWith(errs ...error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.scripts = append(u.scripts, errs...)
}

// Calls reports how many times Upload has been invoked.
func (u *Uploader) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// Object returns the stored bytes for container/key.
func (u *Uploader) Object(container, key string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[container+"/"+key]
	return data, ok
}

func (u *Uploader) Upload(_ context.Context, localFile, container, key string, overwrite bool) error {
	data, err := os.ReadFile(localFile)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++

	if len(u.scripts) > 0 {
		scripted := u.scripts[0]
		u.scripts = u.scripts[1:]
		if scripted != nil {
			return scripted
		}
	}

	full := container + "/" + key
	if _, exists := u.objects[full]; exists && !overwrite {
		return fmt.Errorf("%s: %w", full, blob.ErrKeyExists)
	}
	u.objects[full] = data
	u.logger.Debug("stored object", "key", full, "bytes", len(data))
	return nil
}
