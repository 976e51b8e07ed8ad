package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
// Documents carry deterministic content-based ids assigned by the caller, so
// no sequence is held.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) storage.DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the repository holds no sequence.
func (r *DocumentRepository) Close() error {
	return nil
}

// PutDocument stores a document under its id, overwriting any previous version.
func (r *DocumentRepository) PutDocument(ctx context.Context, doc *core.MedicalDocument) (*core.MedicalDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if doc.InsertedAt.IsZero() {
			doc.InsertedAt = now
		}
		doc.UpdatedAt = now

		if err := tx.Set(makeDocKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.MedicalDocument, error) {
	var result *core.MedicalDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalDocument(val)
			return err
		})
	}, false)
	return result, err
}

// PutEmbeddingChunk stores a chunk keyed by (document id, chunk index).
func (r *DocumentRepository) PutEmbeddingChunk(ctx context.Context, chunk *core.EmbeddingChunk) (*core.EmbeddingChunk, error) {
	if err := core.ValidateChunk(chunk); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		chunk.InsertedAt = time.Now().UTC()

		key := makeChunkKey(chunk.DocumentId, chunk.Index)
		if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return chunk, err
}

// GetChunks retrieves all chunks of a document in ascending index order.
// Key layout makes iteration order the chunk-index order.
func (r *DocumentRepository) GetChunks(ctx context.Context, documentID core.ID) ([]*core.EmbeddingChunk, error) {
	var results []*core.EmbeddingChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.EmbeddingChunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)

	return results, err
}

// DeleteChunks removes every chunk of a document.
func (r *DocumentRepository) DeleteChunks(ctx context.Context, documentID core.ID) error {
	// Collect keys first: deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(documentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilarChunks delegates to the backend scan.
func (r *DocumentRepository) FindSimilarChunks(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	return r.backend.FindSimilarChunks(ctx, vector, minSimilarity, limit)
}
