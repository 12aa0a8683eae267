package segment

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVersionFromDirVersionBin(t *testing.T) {
	dir := t.TempDir()
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], 9)
	if err := os.WriteFile(filepath.Join(dir, "version.bin"), raw[:], 0o644); err != nil {
		t.Fatalf("write version.bin: %v", err)
	}

	got, err := VersionFromDir(dir)
	if err != nil {
		t.Fatalf("VersionFromDir: %v", err)
	}
	if got != 9 {
		t.Fatalf("version = %d, want 9", got)
	}
}

func TestVersionFromDirLegacyIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.drd"), []byte{4, 0, 0}, 0o644); err != nil {
		t.Fatalf("write index.drd: %v", err)
	}

	got, err := VersionFromDir(dir)
	if err != nil {
		t.Fatalf("VersionFromDir: %v", err)
	}
	if got != 4 {
		t.Fatalf("version = %d, want 4", got)
	}
}

func TestVersionFromDirPrefersVersionBin(t *testing.T) {
	dir := t.TempDir()
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], 10)
	if err := os.WriteFile(filepath.Join(dir, "version.bin"), raw[:], 0o644); err != nil {
		t.Fatalf("write version.bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.drd"), []byte{4}, 0o644); err != nil {
		t.Fatalf("write index.drd: %v", err)
	}

	got, err := VersionFromDir(dir)
	if err != nil {
		t.Fatalf("VersionFromDir: %v", err)
	}
	if got != 10 {
		t.Fatalf("version = %d, want 10 (version.bin must win)", got)
	}
}

func TestVersionFromDirNotASegment(t *testing.T) {
	dir := t.TempDir()
	if _, err := VersionFromDir(dir); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("err = %v, want ErrUnknownVersion", err)
	}
}

func TestVersionFromDirTruncatedVersionBin(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "version.bin"), []byte{0, 9}, 0o644); err != nil {
		t.Fatalf("write version.bin: %v", err)
	}
	if _, err := VersionFromDir(dir); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("err = %v, want ErrUnknownVersion", err)
	}
}
