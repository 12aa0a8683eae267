// Package segment defines the value types for published segments.
//
// A segment is an immutable, versioned, time-partitioned unit of data
// produced by an upstream pipeline. This package owns its identity, its
// metadata record, and the derivation of the deterministic storage path a
// published segment lives under. Records are values: every update returns a
// copy, so the pre-publish and post-publish records stay independently
// inspectable.
package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// intervalLayout is the RFC 3339 millisecond form used when serializing
// intervals, e.g. "2020-01-01T00:00:00.000Z".
const intervalLayout = "2006-01-02T15:04:05.000Z"

var ErrBadInterval = errors.New("malformed interval")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) String() string {
	return iv.Start.UTC().Format(intervalLayout) + "/" + iv.End.UTC().Format(intervalLayout)
}

// ParseInterval parses the "start/end" form produced by String.
func ParseInterval(s string) (Interval, error) {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return Interval{}, fmt.Errorf("%w: %q", ErrBadInterval, s)
	}
	st, err := time.Parse(intervalLayout, start)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %w", ErrBadInterval, s, err)
	}
	en, err := time.Parse(intervalLayout, end)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %w", ErrBadInterval, s, err)
	}
	return Interval{Start: st, End: en}, nil
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(iv.String())
}

func (iv *Interval) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseInterval(s)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

// Identity is the tuple that uniquely names a segment. It is never mutated;
// its only job is to derive the storage path.
type Identity struct {
	DataSource   string
	Interval     Interval
	Version      string
	PartitionNum int
}

// Record is the full metadata for a segment: its identity plus the fields
// filled in by publishing (size, binary format version, load spec) and
// fields opaque to this package that travel with the descriptor.
//
// Record is an immutable value. The With* methods return shallow copies;
// callers hand over ownership of any map or slice they pass in.
type Record struct {
	DataSource    string         `json:"dataSource"`
	Interval      Interval       `json:"interval"`
	Version       string         `json:"version"`
	PartitionNum  int            `json:"partitionNum"`
	Dimensions    []string       `json:"dimensions,omitempty"`
	Metrics       []string       `json:"metrics,omitempty"`
	BinaryVersion int            `json:"binaryVersion,omitempty"`
	Size          int64          `json:"size,omitempty"`
	LoadSpec      map[string]any `json:"loadSpec,omitempty"`
}

// Identity returns the identity tuple of the record.
func (r Record) Identity() Identity {
	return Identity{
		DataSource:   r.DataSource,
		Interval:     r.Interval,
		Version:      r.Version,
		PartitionNum: r.PartitionNum,
	}
}

// WithSize returns a copy of the record with the archive byte size set.
func (r Record) WithSize(size int64) Record {
	r.Size = size
	return r
}

// WithBinaryVersion returns a copy of the record with the binary format
// version set.
func (r Record) WithBinaryVersion(version int) Record {
	r.BinaryVersion = version
	return r
}

// WithLoadSpec returns a copy of the record with the load spec set.
func (r Record) WithLoadSpec(spec map[string]any) Record {
	r.LoadSpec = spec
	return r
}
