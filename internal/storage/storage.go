// Package storage persists attachment bytes and hands back a locator. Four
// interchangeable backends implement the same Adapter contract: the local
// filesystem plus three MinIO/S3 upload modes (buffered in memory, streamed
// straight through, or staged via a temp file). The backend is picked once
// at startup from configuration; callers never branch on backend identity.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/msurti/recordkeeper/internal/config"
	"github.com/msurti/recordkeeper/internal/model"
)

// Upload describes one attachment to be persisted. Body is consumed exactly
// once. Size may be -1 when the length is not known up front; backends that
// need an exact size buffer or spool as required.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Resource    model.Resource
	Body        io.Reader
}

// Adapter stores attachment bytes durably and returns a resolvable locator
// (a URL for remote backends, a /uploads path for the local one). Store
// returns only after the backend has acknowledged the full write; on error
// nothing retrievable is left behind at the returned locator.
type Adapter interface {
	Store(ctx context.Context, up Upload) (string, error)
}

// Error wraps a backend failure with the backend name and operation so the
// caller can report which strategy failed without unpacking the cause.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s storage: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds the Adapter selected by cfg.StorageStrategy. Remote backends
// share one MinIO client and ensure the target bucket exists before the
// first upload.
func New(ctx context.Context, cfg *config.Config) (Adapter, error) {
	if cfg.StorageStrategy == config.StrategyLocal {
		return NewLocal(cfg.UploadDir), nil
	}
	rc, err := newRemoteClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.StorageStrategy {
	case config.StrategyBuffered:
		return &Buffered{remote: rc}, nil
	case config.StrategyStreamed:
		return &Streamed{remote: rc}, nil
	case config.StrategyStaged:
		return &Staged{remote: rc, dir: cfg.StagingDir}, nil
	}
	return nil, fmt.Errorf("unknown storage strategy %q", cfg.StorageStrategy)
}
