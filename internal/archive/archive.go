// Package archive defines the packaging seam the publisher consumes: turning
// a segment directory into a single archive file and a segment record into a
// descriptor file. Both outputs are temporary files owned by the caller,
// which must remove them when done.
//
// Packaging failures are local I/O failures and are permanent for the
// current publish attempt; the publisher never retries them.
package archive

import "segpub/internal/segment"

// Packager produces the two temporary artifacts a publish uploads.
type Packager interface {
	// Archive compresses dir into a single archive file and returns its
	// path and byte size. The file name is unique per invocation.
	Archive(dir string) (path string, size int64, err error)

	// WriteDescriptor serializes rec into a descriptor file and returns
	// its path. The file name is unique per invocation.
	WriteDescriptor(rec segment.Record) (path string, err error)
}
