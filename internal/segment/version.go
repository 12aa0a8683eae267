package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File names probed by VersionFromDir. version.bin is written by current
// pipelines; index.drd only exists in segments built before version.bin was
// introduced.
const (
	versionFileName     = "version.bin"
	legacyIndexFileName = "index.drd"
)

var ErrUnknownVersion = errors.New("cannot determine segment binary version")

// VersionFromDir detects the binary format version of a segment directory.
// It reads a big-endian int32 from version.bin, falling back to the first
// byte of index.drd for legacy segments. A directory containing neither is
// not a segment.
func VersionFromDir(dir string) (int, error) {
	raw, err := os.ReadFile(filepath.Join(dir, versionFileName))
	if err == nil {
		if len(raw) < 4 {
			return 0, fmt.Errorf("%w: %s in %s is %d bytes, want at least 4",
				ErrUnknownVersion, versionFileName, dir, len(raw))
		}
		return int(int32(binary.BigEndian.Uint32(raw[:4]))), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	f, err := os.Open(filepath.Join(dir, legacyIndexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s has neither %s nor %s",
				ErrUnknownVersion, dir, versionFileName, legacyIndexFileName)
		}
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var b [1]byte
	if _, err := io.ReadFull(f, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %s in %s is empty", ErrUnknownVersion, legacyIndexFileName, dir)
	}
	return int(b[0]), nil
}
