// Package publisher implements the segment publish protocol: package a
// segment directory into an archive plus descriptor, upload both to a blob
// store under a deterministic key with bounded retry, and return an updated
// segment record embedding the location readers fetch it from.
//
// One publish is strictly sequential (archive, upload archive, upload
// descriptor, finalize). Many publishes may run concurrently through one
// Publisher; the only shared state is read-only configuration and the
// collaborators, which must be concurrency-safe.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"segpub/internal/archive"
	"segpub/internal/blob"
	"segpub/internal/logging"
	"segpub/internal/retry"
	"segpub/internal/segment"
)

// Fixed artifact names under the storage directory. Readers locate a
// segment's files by these names alone, so they are wire constants: never
// change them.
const (
	ArchiveFileName    = "index.zip"
	DescriptorFileName = "descriptor.json"
)

// Load spec keys consumed by readers.
const (
	loadSpecType      = "type"
	loadSpecContainer = "containerName"
	loadSpecBlobPath  = "blobPath"
)

const (
	DefaultMaxTries  = 3
	DefaultProtocol  = "wasb"
	DefaultStoreType = "azure"
)

var ErrNoContainer = errors.New("publisher: container is required")

// Config is the read-only configuration of a Publisher.
type Config struct {
	// Container is the bucket or container all segments are published into.
	Container string
	// Account is the storage account identity, used only for the Hadoop
	// base URI.
	Account string
	// Protocol is the filesystem scheme in the Hadoop base URI.
	// Defaults to DefaultProtocol.
	Protocol string
	// StoreType is the load spec "type" readers dispatch on.
	// Defaults to DefaultStoreType.
	StoreType string
	// MaxTries bounds upload attempts per publish. Values below 1 get
	// DefaultMaxTries; 1 means no retry.
	MaxTries uint64
}

func (c Config) withDefaults() Config {
	if c.Protocol == "" {
		c.Protocol = DefaultProtocol
	}
	if c.StoreType == "" {
		c.StoreType = DefaultStoreType
	}
	if c.MaxTries < 1 {
		c.MaxTries = DefaultMaxTries
	}
	return c
}

// HadoopBasePath renders the filesystem-style root URI external consumers
// mount the container under. Pure string templating, no I/O.
func HadoopBasePath(protocol, container, account string) string {
	return fmt.Sprintf("%s://%s@%s.blob.core.windows.net/", protocol, container, account)
}

// Publisher orchestrates segment publishes against one container.
type Publisher struct {
	uploader blob.Uploader
	packager archive.Packager
	cfg      Config
	logger   *slog.Logger
}

// New builds a Publisher from its collaborators. cfg.Container is required;
// other config fields receive defaults.
func New(uploader blob.Uploader, packager archive.Packager, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.Container == "" {
		return nil, ErrNoContainer
	}
	return &Publisher{
		uploader: uploader,
		packager: packager,
		cfg:      cfg.withDefaults(),
		logger:   logging.Default(logger).With("component", "publisher"),
	}, nil
}

// HadoopPath returns the Hadoop base URI for the configured container and
// account.
func (p *Publisher) HadoopPath() string {
	return HadoopBasePath(p.cfg.Protocol, p.cfg.Container, p.cfg.Account)
}

// HadoopPathFor is retained for callers built against the signature that
// took a data source. The data source never participated in the base URI.
//
// Deprecated: use HadoopPath.
func (p *Publisher) HadoopPathFor(string) string {
	return p.HadoopPath()
}

// MakeLoadSpec builds the location record readers use to fetch the archive
// stored under blobPath.
func (p *Publisher) MakeLoadSpec(blobPath string) map[string]any {
	return map[string]any{
		loadSpecType:      p.cfg.StoreType,
		loadSpecContainer: p.cfg.Container,
		loadSpecBlobPath:  blobPath,
	}
}

// storageKeys derives the archive and descriptor keys for an identity. Both
// live under the same deterministic storage directory, so republishing an
// identity always addresses the same keys.
func storageKeys(id segment.Identity) (archiveKey, descriptorKey string) {
	dir := segment.StorageDir(id)
	return dir + "/" + ArchiveFileName, dir + "/" + DescriptorFileName
}

// Push publishes the segment in indexDir described by rec.
//
// On success it returns a new record with the measured archive size, the
// binary format version detected from indexDir, and a load spec pointing at
// the uploaded archive. rec itself is never modified. On failure no record
// is returned and nothing about rec changes; remote artifacts from a failed
// attempt are overwritten by the next attempt since keys are deterministic.
//
// With replaceExisting=false a segment whose keys already exist fails with
// an error wrapping blob.ErrKeyExists instead of silently overwriting.
// Local temporary files are removed on every exit path; removal failures
// are logged and never change the outcome.
func (p *Publisher) Push(ctx context.Context, indexDir string, rec segment.Record, replaceExisting bool) (segment.Record, error) {
	logger := p.logger.With(
		"publish_id", uuid.NewString(),
		"dataSource", rec.DataSource,
		"interval", rec.Interval.String(),
		"version", rec.Version,
		"partition", rec.PartitionNum,
	)
	logger.Info("publishing segment", "dir", indexDir, "replace", replaceExisting)

	// Detected up front so retried uploads never re-read the directory.
	binaryVersion, err := segment.VersionFromDir(indexDir)
	if err != nil {
		return segment.Record{}, fmt.Errorf("publish segment: %w", err)
	}

	var archivePath, descriptorPath string
	defer func() {
		removeArtifact(logger, archivePath)
		removeArtifact(logger, descriptorPath)
	}()

	archivePath, size, err := p.packager.Archive(indexDir)
	if err != nil {
		return segment.Record{}, fmt.Errorf("publish segment: archive %s: %w", indexDir, err)
	}
	// The descriptor carries the input record; the finalized record goes to
	// the catalog, not the store.
	descriptorPath, err = p.packager.WriteDescriptor(rec)
	if err != nil {
		return segment.Record{}, fmt.Errorf("publish segment: write descriptor: %w", err)
	}

	archiveKey, descriptorKey := storageKeys(rec.Identity())

	// Both uploads form one retry unit: a failure of either repeats both.
	// Keys are deterministic, so re-uploading the archive is idempotent.
	out, err := retry.Do(func() (segment.Record, error) {
		if err := p.uploader.Upload(ctx, archivePath, p.cfg.Container, archiveKey, replaceExisting); err != nil {
			return segment.Record{}, fmt.Errorf("upload archive: %w", err)
		}
		if err := p.uploader.Upload(ctx, descriptorPath, p.cfg.Container, descriptorKey, replaceExisting); err != nil {
			return segment.Record{}, fmt.Errorf("upload descriptor: %w", err)
		}
		return rec.
			WithSize(size).
			WithBinaryVersion(binaryVersion).
			WithLoadSpec(p.MakeLoadSpec(archiveKey)), nil
	}, blob.IsTransient, p.cfg.MaxTries)
	if err != nil {
		return segment.Record{}, fmt.Errorf("publish segment %s: %w", archiveKey, err)
	}

	logger.Info("segment published", "key", archiveKey, "bytes", size, "binaryVersion", binaryVersion)
	return out, nil
}

// removeArtifact deletes a temporary file, tolerating paths never created
// and files already gone. Failures are logged only; cleanup must never mask
// the publish result.
func removeArtifact(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove temporary artifact", "path", path, "error", err)
		return
	}
	logger.Debug("removed temporary artifact", "path", path)
}
