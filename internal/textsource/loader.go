package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"finextract/internal/domain"
	"finextract/internal/port"
	s3storage "finextract/internal/storage/s3"
)

// Loader reads document bytes from the local filesystem or from object storage.
type Loader struct {
	storage  port.ObjectStorage
	maxBytes int64
}

// NewLoader creates a Loader. storage may be nil, in which case s3:// references fail.
// A maxBytes of zero disables the size check for local files.
func NewLoader(storage port.ObjectStorage, maxBytes int64) *Loader {
	return &Loader{storage: storage, maxBytes: maxBytes}
}

// Load resolves ref, a local path or an s3://bucket/key URI, into a SourceFile named by ref.
func (l *Loader) Load(ctx context.Context, ref string) (domain.SourceFile, error) {
	if s3storage.IsURI(ref) {
		return l.loadObject(ctx, ref)
	}

	info, err := os.Stat(ref)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("%w: %v", domain.ErrInvalidSource, err)
	}
	if info.IsDir() {
		return domain.SourceFile{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidSource, ref)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return domain.SourceFile{}, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, ref, info.Size())
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("reading %s: %w", ref, err)
	}
	return domain.SourceFile{Name: filepath.Base(ref), Data: data}, nil
}

func (l *Loader) loadObject(ctx context.Context, uri string) (domain.SourceFile, error) {
	if l.storage == nil {
		return domain.SourceFile{}, fmt.Errorf("%w: object storage is not configured for %s", domain.ErrInvalidSource, uri)
	}
	bucket, key, err := s3storage.ParseURI(uri)
	if err != nil {
		return domain.SourceFile{}, err
	}
	data, err := l.storage.Download(ctx, bucket, key)
	if err != nil {
		return domain.SourceFile{}, err
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return domain.SourceFile{}, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, uri, len(data))
	}
	return domain.SourceFile{Name: filepath.Base(key), Data: data}, nil
}
