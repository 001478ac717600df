// Package ingest composes the classifier, the storage adapter and the record
// repository into the upload pipeline. The ordering invariant lives here: a
// record is created or updated only after its attachment (if any) has been
// confirmed written, so no record ever points at bytes that do not exist.
//
// The reverse case is a known gap: if the database write fails after a
// successful store, the caller gets an error but the stored object stays
// behind. No compensating delete is performed. Likewise, deleting a record
// does not remove its attachment from the backend.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/msurti/recordkeeper/internal/classify"
	"github.com/msurti/recordkeeper/internal/model"
	"github.com/msurti/recordkeeper/internal/storage"
)

// ErrInvalidInput marks malformed request data, such as a title field that
// is present but empty. The API layer maps it to 400.
var ErrInvalidInput = errors.New("invalid input")

// Records is the slice of the repository the pipeline needs.
type Records interface {
	List(ctx context.Context) ([]model.Record, error)
	Create(ctx context.Context, rec *model.Record) error
	Get(ctx context.Context, id string) (*model.Record, error)
	Update(ctx context.Context, id string, patch model.RecordPatch) (*model.Record, error)
	Delete(ctx context.Context, id string) error
}

// Attachment is an incoming binary. Body is read exactly once, by the
// storage adapter. Size may be -1 when the length is unknown.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateInput carries a create request. Attachment is nil when the request
// had no file.
type CreateInput struct {
	Title       string
	Description string
	Attachment  *Attachment
}

// UpdateInput carries an update request. Nil metadata fields were omitted
// from the request and leave the stored values untouched; presence of the
// field, not its value, is the update trigger.
type UpdateInput struct {
	Title       *string
	Description *string
	Attachment  *Attachment
}

// Service is the ingestion orchestrator.
type Service struct {
	records Records
	store   storage.Adapter
}

// New constructs a Service.
func New(records Records, store storage.Adapter) *Service {
	return &Service{records: records, store: store}
}

// List returns all records, most recent first.
func (s *Service) List(ctx context.Context) ([]model.Record, error) {
	return s.records.List(ctx)
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id string) (*model.Record, error) {
	return s.records.Get(ctx, id)
}

// Create stores the attachment (when present) and then persists the record.
// A storage failure aborts the request before any database write.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Record, error) {
	rec := &model.Record{
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Attachment != nil {
		kind, locator, err := s.storeAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, err
		}
		rec.Type = kind
		rec.FileURL = locator
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies a partial update. A new attachment, if present, is stored
// before the record is touched; on storage failure the existing record and
// its previously stored attachment remain exactly as they were.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Record, error) {
	if in.Title != nil && *in.Title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if _, err := s.records.Get(ctx, id); err != nil {
		return nil, err
	}
	patch := model.RecordPatch{
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Attachment != nil {
		kind, locator, err := s.storeAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, err
		}
		patch.Type = &kind
		patch.FileURL = &locator
	}
	return s.records.Update(ctx, id, patch)
}

// Delete removes the record. The attachment at the storage backend is left
// in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) storeAttachment(ctx context.Context, att *Attachment) (model.AttachmentKind, string, error) {
	kind, resource := classify.Classify(att.ContentType)
	locator, err := s.store.Store(ctx, storage.Upload{
		Filename:    att.Filename,
		ContentType: att.ContentType,
		Size:        att.Size,
		Resource:    resource,
		Body:        att.Body,
	})
	if err != nil {
		return model.KindNone, "", fmt.Errorf("store attachment: %w", err)
	}
	return kind, locator, nil
}
