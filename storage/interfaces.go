package storage

import (
	"context"

	"github.com/arborhealth/casesync/core"
)

// OrganizationRepository provides operations for managing internal organizations.
// Implementations must be thread-safe and support concurrent access.
type OrganizationRepository interface {
	// FindOrganizationByExternalId looks up an organization by its external
	// company back-reference. Returns ErrNotFound if no organization carries
	// the given external company id.
	FindOrganizationByExternalId(ctx context.Context, externalCompanyID int64) (*core.Organization, error)

	// CreateOrganization adds an organization to storage.
	// For organizations with Id=0, generates a new id from sequence.
	// Sets InsertedAt/UpdatedAt timestamps and maintains the external-id index.
	// Returns the organization with id and timestamps populated.
	CreateOrganization(ctx context.Context, org *core.Organization) (*core.Organization, error)

	// GetOrganization retrieves an organization by internal id.
	// Returns ErrNotFound if the organization doesn't exist.
	GetOrganization(ctx context.Context, id core.ID) (*core.Organization, error)

	// Close releases resources held by the repository.
	Close() error
}

// CaseRepository provides operations for managing internal cases.
// Implementations must be thread-safe and support concurrent access.
type CaseRepository interface {
	// FindCaseByExternalId looks up a case by its external ticket
	// back-reference. Returns ErrNotFound if no case carries the given
	// external ticket id.
	FindCaseByExternalId(ctx context.Context, externalTicketID int64) (*core.Case, error)

	// CreateCase adds a case to storage.
	// For cases with Id=0, generates a new id from sequence.
	// Sets InsertedAt/UpdatedAt timestamps and maintains the external-id
	// index when ExternalTicketId is non-zero.
	CreateCase(ctx context.Context, c *core.Case) (*core.Case, error)

	// UpdateCase applies the non-nil fields of update to an existing case
	// inside a single transaction. Returns the updated case, or ErrNotFound
	// if the case doesn't exist.
	UpdateCase(ctx context.Context, id core.ID, update *core.CaseUpdate) (*core.Case, error)

	// GetCase retrieves a case by internal id.
	// Returns ErrNotFound if the case doesn't exist.
	GetCase(ctx context.Context, id core.ID) (*core.Case, error)

	// GetCasesWithExternalIds retrieves every case carrying a non-zero
	// external ticket id, ordered by external ticket id.
	GetCasesWithExternalIds(ctx context.Context) ([]*core.Case, error)

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository provides operations for medical documents and their
// embedding chunks. Implementations must be thread-safe.
type DocumentRepository interface {
	// PutDocument stores a medical document under its (caller-assigned) id,
	// overwriting any previous version. Documents get deterministic
	// content-based ids, so reprocessing an attachment converges on the same
	// record.
	PutDocument(ctx context.Context, doc *core.MedicalDocument) (*core.MedicalDocument, error)

	// GetDocument retrieves a document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.MedicalDocument, error)

	// PutEmbeddingChunk stores a chunk keyed by (document id, chunk index),
	// overwriting any previous chunk at the same index.
	PutEmbeddingChunk(ctx context.Context, chunk *core.EmbeddingChunk) (*core.EmbeddingChunk, error)

	// GetChunks retrieves all chunks of a document in ascending index order.
	GetChunks(ctx context.Context, documentID core.ID) ([]*core.EmbeddingChunk, error)

	// DeleteChunks removes every chunk of a document. Used before
	// reprocessing so a shorter rerun cannot leave stale trailing chunks.
	DeleteChunks(ctx context.Context, documentID core.ID) error

	// FindSimilarChunks scans stored chunk vectors for cosine similarity to
	// the query vector. Returns chunks with similarity >= minSimilarity, up
	// to limit results, ordered by score (highest first).
	FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// Close releases resources held by the repository.
	Close() error
}
