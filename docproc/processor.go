package docproc

import (
	"context"

	"github.com/arborhealth/casesync/core"
)

// Request carries one downloaded attachment to the document processing
// service. Data holds the raw attachment bytes.
type Request struct {
	CaseId               core.ID
	WorkerId             core.ID
	ExternalAttachmentId int64
	Filename             string
	ContentType          string
	Size                 int64
	Data                 []byte
}

// Result reports the outcome of processing one attachment. When Success is
// false, Message carries the service's reason; the attachment is skipped and
// siblings continue.
type Result struct {
	Success    bool
	DocumentId core.ID
	Message    string
}

// Processor hands attachments to the document processing service for OCR and
// document-kind classification. Implementations persist the resulting
// MedicalDocument record; extracted text is retrieved afterwards through
// storage.DocumentRepository.
type Processor interface {
	// ProcessAttachment submits one attachment for processing. A returned
	// error is a transport or configuration failure; a processing rejection
	// comes back as a Result with Success=false.
	ProcessAttachment(ctx context.Context, req *Request) (*Result, error)

	// IsAvailable reports whether the processing service is configured.
	IsAvailable() bool
}
