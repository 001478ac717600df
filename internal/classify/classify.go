// Package classify decides what an uploaded attachment is based on its
// declared media type. The rule is deliberately binary: anything whose media
// type mentions PDF is a pdf, everything else is treated as an image. That
// means a stray text/csv upload is recorded as an image — a known limitation
// of the observed behavior, kept rather than silently widened.
package classify

import (
	"strings"

	"github.com/msurti/recordkeeper/internal/model"
)

// Classify maps a declared media type to the attachment kind and the storage
// resource type to request. It is a pure function; malformed or empty input
// falls through to the image branch like any other non-PDF type. Callers
// with no attachment at all must not call Classify.
func Classify(mediaType string) (model.AttachmentKind, model.Resource) {
	if strings.Contains(strings.ToLower(mediaType), "pdf") {
		return model.KindPDF, model.ResourceRaw
	}
	return model.KindImage, model.ResourceAuto
}
