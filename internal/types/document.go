package types

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the processing state of a document.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusClassified Status = "classified"
	StatusExtracted  Status = "extracted"
	StatusVerified   Status = "verified"
	StatusReviewed   Status = "reviewed"
	StatusExported   Status = "exported"
	StatusRejected   Status = "rejected"
)

// validTransitions maps each status to the statuses reachable from it.
// Rejected is reachable from any non-terminal state (cancellation).
var validTransitions = map[Status][]Status{
	StatusUploaded:   {StatusClassified, StatusRejected},
	StatusClassified: {StatusExtracted, StatusRejected},
	StatusExtracted:  {StatusVerified, StatusRejected},
	StatusVerified:   {StatusReviewed, StatusExported},
	StatusReviewed:   {StatusExported},
}

// Document is one uploaded invoice moving through the pipeline.
// A document is owned by a single pipeline run; the mutex only guards
// against the review/export endpoints racing a status read.
type Document struct {
	mu sync.Mutex

	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"` // file stem, e.g. "invoice_042"
	SourcePath string    `json:"source_path"`
	Pages      []string  `json:"pages,omitempty"` // rendered page image paths
	UploadedAt time.Time `json:"uploaded_at"`

	Status Status `json:"status"`
	// Reason explains a Rejected status ("not an invoice", "cancelled", ...).
	Reason string `json:"reason,omitempty"`

	// Raw is the unverified model response; Record is the verified result.
	Raw    RawRecord `json:"raw,omitempty"`
	Record Record    `json:"record,omitempty"`
}

// NewDocument creates a document in the Uploaded state.
func NewDocument(sourcePath, name string) *Document {
	return &Document{
		ID:         uuid.New(),
		Name:       name,
		SourcePath: sourcePath,
		UploadedAt: time.Now(),
		Status:     StatusUploaded,
	}
}

// Transition moves the document to the next status, enforcing the
// state machine. Terminal states (Rejected, Exported) admit nothing.
func (d *Document) Transition(next Status) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range validTransitions[d.Status] {
		if s == next {
			d.Status = next
			return nil
		}
	}
	return fmt.Errorf("invalid transition %s -> %s for document %s", d.Status, next, d.ID)
}

// Reject moves the document to the terminal Rejected state with a reason.
// Rejecting an already-terminal document is a no-op.
func (d *Document) Reject(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Status == StatusRejected || d.Status == StatusExported {
		return
	}
	d.Status = StatusRejected
	d.Reason = reason
}

// ClearRecord drops any partial record, e.g. on cancellation.
func (d *Document) ClearRecord() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Raw = nil
	d.Record = nil
}

// CurrentStatus returns the status under lock.
func (d *Document) CurrentStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Status
}

// Exportable reports whether the document's record may be exported.
func (d *Document) Exportable() bool {
	s := d.CurrentStatus()
	return s == StatusVerified || s == StatusReviewed || s == StatusExported
}
