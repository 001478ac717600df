package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msurti/recordkeeper/internal/model"
)

// fakeObjectStore records puts and can be told to fail.
type fakeObjectStore struct {
	putErr   error
	puts     []string // object keys, in order
	lastBody []byte
	lastSize int64
	lastPath string
}

func (f *fakeObjectStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (f *fakeObjectStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (f *fakeObjectStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.puts = append(f.puts, key)
	f.lastBody = data
	f.lastSize = size
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func (f *fakeObjectStore) FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.puts = append(f.puts, key)
	f.lastBody = data
	f.lastPath = filePath
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func (f *fakeObjectStore) EndpointURL() *url.URL {
	return &url.URL{Scheme: "https", Host: "objects.example.com"}
}

func newTestRemote(fake *fakeObjectStore) *remote {
	return &remote{client: fake, bucket: "records"}
}

func TestBufferedStore(t *testing.T) {
	fake := &fakeObjectStore{}
	b := &Buffered{remote: newTestRemote(fake)}

	locator, err := b.Store(context.Background(), Upload{
		Filename:    "logo.png",
		ContentType: "image/png",
		Size:        -1, // buffered mode never needs the size up front
		Resource:    model.ResourceAuto,
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(fake.lastBody))
	assert.Equal(t, int64(len("png-bytes")), fake.lastSize)
	assert.True(t, strings.HasPrefix(locator, "https://objects.example.com/records/media/"))
	assert.True(t, strings.HasSuffix(locator, "/logo.png"))
}

func TestBufferedStoreFailure(t *testing.T) {
	fake := &fakeObjectStore{putErr: errors.New("connection reset")}
	b := &Buffered{remote: newTestRemote(fake)}

	_, err := b.Store(context.Background(), Upload{Filename: "logo.png", Body: strings.NewReader("x")})
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "buffered", serr.Backend)
	assert.Empty(t, fake.puts)
}

func TestStreamedStore(t *testing.T) {
	fake := &fakeObjectStore{}
	s := &Streamed{remote: newTestRemote(fake)}

	locator, err := s.Store(context.Background(), Upload{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Resource:    model.ResourceRaw,
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(fake.lastBody))
	// Raw uploads keep their own prefix.
	assert.Contains(t, locator, "/records/raw/")
}

func TestStreamedStoreUnknownSize(t *testing.T) {
	fake := &fakeObjectStore{}
	s := &Streamed{remote: newTestRemote(fake)}

	_, err := s.Store(context.Background(), Upload{
		Filename: "big.png",
		Size:     -1,
		Body:     strings.NewReader("stream"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), fake.lastSize)
}

func TestStagedStoreRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeObjectStore{}
	s := &Staged{remote: newTestRemote(fake), dir: dir}

	locator, err := s.Store(context.Background(), Upload{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Resource:    model.ResourceRaw,
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, locator)
	assert.Equal(t, "%PDF", string(fake.lastBody))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging dir should be empty after a successful upload")
}

func TestStagedStoreRemovesTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeObjectStore{putErr: errors.New("bucket gone")}
	s := &Staged{remote: newTestRemote(fake), dir: dir}

	_, err := s.Store(context.Background(), Upload{Filename: "report.pdf", Body: strings.NewReader("%PDF")})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging dir should be empty after a failed upload")
}
