package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for internal domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentIDFor derives the deterministic ID for a medical document produced
// from a helpdesk attachment. Reprocessing the same attachment for the same
// case converges on the same document instead of appending a duplicate.
func DocumentIDFor(caseID ID, externalAttachmentID int64, filename string) ID {
	return IDFromContent(fmt.Sprintf("doc:%d:%d:%s", caseID, externalAttachmentID, filename))
}

// CaseStatus is the internal case workflow vocabulary.
type CaseStatus string

const (
	StatusNew            CaseStatus = "NEW"
	StatusInProgress     CaseStatus = "IN_PROGRESS"
	StatusAwaitingReview CaseStatus = "AWAITING_REVIEW"
	StatusComplete       CaseStatus = "COMPLETE"
)

// CasePriority is the internal case priority vocabulary.
type CasePriority string

const (
	PriorityLow    CasePriority = "low"
	PriorityMedium CasePriority = "medium"
	PriorityHigh   CasePriority = "high"
	PriorityUrgent CasePriority = "urgent"
)

// DefaultCaseType is assigned to cases created by the sync pipeline.
// Business classification happens elsewhere.
const DefaultCaseType = "GENERAL"

// Organization is an internal tenant, created once per distinct external
// helpdesk company and thereafter only updated, never duplicated.
type Organization struct {
	Id                ID
	Name              string
	Slug              string // url-safe, unique: slugified name + external company id
	ExternalCompanyId int64  // helpdesk company back-reference, 0 when unlinked
	Domains           []string
	Description       string
	InsertedAt        time.Time
	UpdatedAt         time.Time
}

// Case is an internal case record reconciled from an external helpdesk ticket.
// A case with a non-zero ExternalTicketId is unique per that external id:
// re-import updates it in place.
type Case struct {
	Id                ID
	ExternalTicketId  int64 // helpdesk ticket back-reference, 0 when unlinked
	ExternalCompanyId int64 // helpdesk company back-reference, 0 when unknown
	Subject           string
	CaseType          string
	Status            CaseStatus
	Priority          CasePriority
	CompanyName       string // denormalized from the resolving company
	OrganizationId    ID     // 0 until the owning organization is resolved
	RequesterId       int64
	AssigneeId        int64
	AgeDays           int // computed at import time, not live
	Tags              []string
	CustomFields      string // opaque JSON text from the external system, never interpreted
	CreatedAt         time.Time
	UpdatedAt         time.Time
	InsertedAt        time.Time
}

// CaseUpdate holds the fields an existing case may be updated with during
// reconciliation. Nil pointer fields are left unchanged.
type CaseUpdate struct {
	OrganizationId    *ID
	CompanyName       *string
	ExternalCompanyId *int64
	Status            *CaseStatus
	Priority          *CasePriority
}

// MedicalDocument is the internal record of a processed medical attachment.
// ExtractedText stays empty until the document processing service completes.
type MedicalDocument struct {
	Id            ID
	CaseId        ID
	WorkerId      ID
	Filename      string
	Kind          string
	ExtractedText string
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// EmbeddingChunk is a bounded-length slice of a document's extracted text with
// its embedding vector. Chunk order is semantically meaningful: concatenating
// chunks in ascending Index order reconstructs the extracted text.
type EmbeddingChunk struct {
	DocumentId ID
	CaseId     ID
	Index      int // 0-based, contiguous per document
	Text       string
	Vector     []float32
	Filename   string
	Kind       string
	InsertedAt time.Time
}

// ChunkMatch is an embedding chunk returned from similarity search.
type ChunkMatch struct {
	Chunk *EmbeddingChunk
	Score float32
}
