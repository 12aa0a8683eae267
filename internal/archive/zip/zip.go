// Package zip implements archive.Packager with the zip container format
// readers expect, compressed with klauspost's deflate.
package zip

import (
	stdzip "archive/zip"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"segpub/internal/archive"
	"segpub/internal/logging"
	"segpub/internal/segment"
)

type Packager struct {
	tmpDir string
	logger *slog.Logger
}

var _ archive.Packager = (*Packager)(nil)

// New returns a Packager writing its temporary files under tmpDir.
// An empty tmpDir means the OS default temp directory.
func New(tmpDir string, logger *slog.Logger) *Packager {
	return &Packager{
		tmpDir: tmpDir,
		logger: logging.Default(logger).With("component", "zip-packager"),
	}
}

// Archive zips dir into a temporary file and returns its path and byte
// size. Entry names are slash-separated paths relative to dir, so archives
// are byte-stable across operating systems. Files are streamed; only one is
// open at a time.
func (p *Packager) Archive(dir string) (string, int64, error) {
	out, err := os.CreateTemp(p.tmpDir, "index-*.zip")
	if err != nil {
		return "", 0, err
	}
	outPath := out.Name()

	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(outPath)
	}

	zw := stdzip.NewWriter(out)
	zw.RegisterCompressor(stdzip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return p.addFile(zw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		cleanup()
		return "", 0, walkErr
	}

	if err := zw.Close(); err != nil {
		cleanup()
		return "", 0, err
	}
	info, err := out.Stat()
	if err != nil {
		cleanup()
		return "", 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", 0, err
	}

	p.logger.Debug("archived segment dir", "dir", dir, "archive", outPath, "bytes", info.Size())
	return outPath, info.Size(), nil
}

func (p *Packager) addFile(zw *stdzip.Writer, path, name string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	hdr := &stdzip.FileHeader{Name: name, Method: stdzip.Deflate}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// WriteDescriptor serializes rec as JSON into a temporary file and returns
// its path.
func (p *Packager) WriteDescriptor(rec segment.Record) (string, error) {
	out, err := os.CreateTemp(p.tmpDir, "descriptor-*.json")
	if err != nil {
		return "", err
	}
	outPath := out.Name()

	if err := json.NewEncoder(out).Encode(rec); err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}
