package retry

import (
	"errors"
	"testing"
	"time"

	"segpub/internal/blob"
)

func init() {
	initialInterval = time.Millisecond
	maxInterval = 5 * time.Millisecond
}

func TestSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(func() (string, error) {
		calls++
		return "ok", nil
	}, blob.IsTransient, 3)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("got %q after %d calls, want ok after 1", got, calls)
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	got, err := Do(func() (int, error) {
		calls++
		if calls < 3 {
			return 0, blob.Transient(errors.New("throttled"))
		}
		return 42, nil
	}, blob.IsTransient, 3)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestExhaustsAttempts(t *testing.T) {
	cause := errors.New("throttled")
	calls := 0
	_, err := Do(func() (int, error) {
		calls++
		return 0, blob.Transient(cause)
	}, blob.IsTransient, 4)

	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestPermanentAbortsImmediately(t *testing.T) {
	cause := errors.New("forbidden")
	calls := 0
	_, err := Do(func() (int, error) {
		calls++
		return 0, cause
	}, blob.IsTransient, 5)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want original cause", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("permanent error reported as exhaustion: %v", err)
	}
}

func TestConflictAbortsImmediately(t *testing.T) {
	calls := 0
	_, err := Do(func() (int, error) {
		calls++
		return 0, blob.ErrKeyExists
	}, blob.IsTransient, 5)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, blob.ErrKeyExists) {
		t.Fatalf("err = %v, want ErrKeyExists", err)
	}
}

func TestMaxTriesOfOneMeansNoRetry(t *testing.T) {
	calls := 0
	_, err := Do(func() (int, error) {
		calls++
		return 0, blob.Transient(errors.New("flaky"))
	}, blob.IsTransient, 1)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
}

func TestZeroMaxTriesClampedToOne(t *testing.T) {
	calls := 0
	if _, err := Do(func() (int, error) {
		calls++
		return 7, nil
	}, blob.IsTransient, 0); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
