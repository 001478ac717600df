// Package model contains the struct definitions shared across packages.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttachmentKind is the logical kind of a record's attachment. The empty
// value means the record carries no attachment.
type AttachmentKind string

const (
	KindNone  AttachmentKind = ""
	KindImage AttachmentKind = "image"
	KindPDF   AttachmentKind = "pdf"
)

// Resource is the physical resource type requested from the object store.
// PDFs are stored raw (never transcoded); images may use the store's
// automatic media handling.
type Resource string

const (
	ResourceAuto  Resource = "auto"
	ResourceImage Resource = "image"
	ResourceRaw   Resource = "raw"
)

// Record is the persisted entity: metadata plus an optional pointer to a
// stored attachment. Type and FileURL are set together or not at all; a
// record is only written after its attachment (if any) is confirmed stored.
type Record struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        AttachmentKind     `bson:"type,omitempty" json:"type,omitempty"`
	FileURL     string             `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecordPatch is a partial update. Nil fields are left untouched; presence,
// not truthiness, decides what gets written.
type RecordPatch struct {
	Title       *string
	Description *string
	Type        *AttachmentKind
	FileURL     *string
}

// Empty reports whether the patch would change nothing.
func (p RecordPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Type == nil && p.FileURL == nil
}
