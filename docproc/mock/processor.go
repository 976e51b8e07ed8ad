// Package mock provides an in-memory document processor for testing.
package mock

import (
	"context"
	"sync"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/docproc"
	"github.com/arborhealth/casesync/storage"
)

// MockProcessor persists documents directly into storage with configurable
// extracted text instead of calling the processing service.
type MockProcessor struct {
	mu sync.Mutex

	docRepo storage.DocumentRepository

	// ExtractedText is the text stored for every processed document unless
	// TextFor has an entry for the filename.
	ExtractedText string

	// TextFor overrides ExtractedText per filename.
	TextFor map[string]string

	// Kind is the document kind stored on every processed document.
	Kind string

	// Available mirrors the configured state of a real client.
	Available bool

	// FailFor lists filenames the processor rejects with Success=false.
	FailFor map[string]string

	// ProcessError, when set, is returned from every call.
	ProcessError error

	calls []*docproc.Request
}

var _ docproc.Processor = (*MockProcessor)(nil)

// NewMockProcessor creates a mock processor writing into docRepo.
func NewMockProcessor(docRepo storage.DocumentRepository) *MockProcessor {
	return &MockProcessor{
		docRepo:       docRepo,
		ExtractedText: "Patient is fit for duty. No restrictions apply.",
		Kind:          "medical_certificate",
		Available:     true,
		TextFor:       make(map[string]string),
		FailFor:       make(map[string]string),
	}
}

// IsAvailable reports the configured availability.
func (m *MockProcessor) IsAvailable() bool {
	return m.Available
}

// ProcessAttachment stores a document with the configured extracted text.
func (m *MockProcessor) ProcessAttachment(ctx context.Context, req *docproc.Request) (*docproc.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if !m.Available {
		return nil, docproc.ErrNotConfigured
	}
	if m.ProcessError != nil {
		return nil, m.ProcessError
	}
	if reason, ok := m.FailFor[req.Filename]; ok {
		return &docproc.Result{Success: false, Message: reason}, nil
	}

	text := m.ExtractedText
	if override, ok := m.TextFor[req.Filename]; ok {
		text = override
	}

	docID := core.DocumentIDFor(req.CaseId, req.ExternalAttachmentId, req.Filename)
	doc := &core.MedicalDocument{
		Id:            docID,
		CaseId:        req.CaseId,
		WorkerId:      req.WorkerId,
		Filename:      req.Filename,
		Kind:          m.Kind,
		ExtractedText: text,
	}
	if _, err := m.docRepo.PutDocument(ctx, doc); err != nil {
		return nil, err
	}

	return &docproc.Result{Success: true, DocumentId: docID}, nil
}

// Calls returns every request the processor has received.
func (m *MockProcessor) Calls() []*docproc.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*docproc.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of requests received.
func (m *MockProcessor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
