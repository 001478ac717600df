package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Local writes attachments to a directory served back at /uploads. Filenames
// combine a millisecond timestamp, a random component and the original base
// name, so concurrent uploads of the same file never overwrite each other.
type Local struct {
	dir string
}

// NewLocal constructs a Local adapter rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Store writes the upload to disk and returns its /uploads path. The
// directory is created on first use; MkdirAll is a no-op when it already
// exists, so concurrent first writes are safe. A partially written file is
// removed before the error is returned.
func (l *Local) Store(ctx context.Context, up Upload) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", &Error{Backend: "local", Op: "mkdir", Err: err}
	}
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), safeBase(up.Filename))
	path := filepath.Join(l.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", &Error{Backend: "local", Op: "create", Err: err}
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", &Error{Backend: "local", Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &Error{Backend: "local", Op: "close", Err: err}
	}
	return "/uploads/" + name, nil
}

// safeBase strips any directory components a client may have smuggled into
// the filename.
func safeBase(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}
