package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/msurti/recordkeeper/internal/config"
	"github.com/msurti/recordkeeper/internal/model"
)

// objectStore is the slice of the MinIO client the remote backends use.
// *minio.Client satisfies it.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	EndpointURL() *url.URL
}

// remote holds the object-store client and bucket shared by the three
// remote upload modes.
type remote struct {
	client objectStore
	bucket string
}

// newRemoteClient builds the MinIO client from the Config and makes sure the
// bucket exists.
func newRemoteClient(ctx context.Context, cfg *config.Config) (*remote, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	rc := &remote{client: client, bucket: cfg.S3Bucket}
	if err := rc.ensureBucket(ctx, cfg.S3Region); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *remote) ensureBucket(ctx context.Context, region string) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", r.bucket, err)
	}
	if !exists {
		if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}

// objectKey derives a collision-free key. Raw uploads (PDFs) keep their own
// prefix so they are never routed through media handling.
func (r *remote) objectKey(up Upload) string {
	prefix := "media"
	if up.Resource == model.ResourceRaw {
		prefix = "raw"
	}
	return fmt.Sprintf("%s/%s/%s", prefix, uuid.NewString(), safeBase(up.Filename))
}

// objectURL is the canonical public URL for a stored object.
func (r *remote) objectURL(key string) string {
	u := *r.client.EndpointURL()
	u.Path = path.Join(u.Path, r.bucket, key)
	return u.String()
}

// Buffered reads the whole payload into memory and uploads it in one
// blocking call. On failure the buffer is simply discarded; no temp
// artifact exists anywhere.
type Buffered struct {
	*remote
}

func (b *Buffered) Store(ctx context.Context, up Upload) (string, error) {
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return "", &Error{Backend: "buffered", Op: "read", Err: err}
	}
	key := b.objectKey(up)
	opts := minio.PutObjectOptions{ContentType: up.ContentType}
	if _, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", &Error{Backend: "buffered", Op: "put", Err: err}
	}
	return b.objectURL(key), nil
}

// Streamed pipes the payload directly to the object store without
// materializing it in memory or on disk, which makes it safe on read-only
// filesystems. The locator resolves only after the store acknowledges the
// complete object.
type Streamed struct {
	*remote
}

func (s *Streamed) Store(ctx context.Context, up Upload) (string, error) {
	size := up.Size
	if size <= 0 {
		// Unknown length: minio switches to multipart streaming.
		size = -1
	}
	key := s.objectKey(up)
	opts := minio.PutObjectOptions{ContentType: up.ContentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, up.Body, size, opts); err != nil {
		return "", &Error{Backend: "streamed", Op: "put", Err: err}
	}
	return s.objectURL(key), nil
}

// Staged spools the payload to a temp file first and uploads from disk. The
// temp file is removed on every exit path, success or not.
type Staged struct {
	*remote
	dir string // empty means the OS temp dir
}

func (s *Staged) Store(ctx context.Context, up Upload) (string, error) {
	tmp, err := os.CreateTemp(s.dir, "recordkeeper-*")
	if err != nil {
		return "", &Error{Backend: "staged", Op: "spool", Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, up.Body); err != nil {
		tmp.Close()
		return "", &Error{Backend: "staged", Op: "spool", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &Error{Backend: "staged", Op: "spool", Err: err}
	}
	key := s.objectKey(up)
	opts := minio.PutObjectOptions{ContentType: up.ContentType}
	if _, err := s.client.FPutObject(ctx, s.bucket, key, tmp.Name(), opts); err != nil {
		return "", &Error{Backend: "staged", Op: "put", Err: err}
	}
	return s.objectURL(key), nil
}
