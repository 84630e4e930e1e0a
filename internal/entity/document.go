package entity

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
)

// SourceDocument is one uploaded exam paper.
type SourceDocument struct {
	ID        uuid.UUID
	Filename  string
	MediaType string
	Content   []byte
}

// NewSourceDocument assigns a fresh ID to an uploaded file.
func NewSourceDocument(filename, mediaType string, content []byte) SourceDocument {
	return SourceDocument{
		ID:        uuid.New(),
		Filename:  filename,
		MediaType: mediaType,
		Content:   content,
	}
}

// NormalizedPayload is the transport form of a document sent to the extraction backend.
type NormalizedPayload struct {
	MediaType  string
	Content    []byte
	Normalized bool // false when the original bytes were passed through
}

// Format returns the document family of the payload.
func (p NormalizedPayload) Format() constants.Format {
	return constants.MapMediaTypeToFormat(p.MediaType)
}

// DocumentStatus is a read-only view of one document's progress through a run.
type DocumentStatus struct {
	DocumentID uuid.UUID           `json:"document_id"`
	Filename   string              `json:"filename"`
	Status     constants.DocStatus `json:"status"`
	Error      string              `json:"error,omitempty"`
}
