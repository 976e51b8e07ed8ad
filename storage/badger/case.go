package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/storage"
)

// CaseRepository implements storage.CaseRepository for BadgerDB.
type CaseRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CaseRepository = (*CaseRepository)(nil)

// NewCaseRepository creates a new CaseRepository.
func NewCaseRepository(backend *Backend) (storage.CaseRepository, error) {
	idSeq, err := backend.GetSequence(caseIDSeq)
	if err != nil {
		return nil, err
	}

	return &CaseRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CaseRepository) Close() error {
	return r.idSeq.Release()
}

// FindCaseByExternalId looks up a case via the external-ticket-id index.
func (r *CaseRepository) FindCaseByExternalId(ctx context.Context, externalTicketID int64) (*core.Case, error) {
	var result *core.Case
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCaseExternalKey(externalTicketID))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var caseID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			caseID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readCase(tx, makeCaseKey(caseID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// CreateCase adds a case to storage, generating an internal id and
// maintaining the external-id index inside one transaction.
func (r *CaseRepository) CreateCase(ctx context.Context, c *core.Case) (*core.Case, error) {
	if err := core.ValidateCase(c); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if c.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			c.Id = core.ID(nextID)
		}

		c.InsertedAt = time.Now().UTC()
		c.UpdatedAt = c.InsertedAt

		if err := tx.Set(makeCaseKey(c.Id), storage.MarshalCase(c)); err != nil {
			return err
		}

		if c.ExternalTicketId != 0 {
			key := makeCaseExternalKey(c.ExternalTicketId)
			if err := tx.Set(key, storage.MarshalID(c.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return c, err
}

// UpdateCase applies the non-nil fields of update to an existing case.
// The read and write happen in one transaction, closing the check-then-act
// race for concurrent invocations of the same logical upsert.
func (r *CaseRepository) UpdateCase(ctx context.Context, id core.ID, update *core.CaseUpdate) (*core.Case, error) {
	var result *core.Case
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		c, err := r.readCase(tx, makeCaseKey(id))
		if err != nil {
			return err
		}
		if c == nil {
			return storage.ErrNotFound
		}

		if update.OrganizationId != nil {
			c.OrganizationId = *update.OrganizationId
		}
		if update.CompanyName != nil {
			c.CompanyName = *update.CompanyName
		}
		if update.ExternalCompanyId != nil {
			c.ExternalCompanyId = *update.ExternalCompanyId
		}
		if update.Status != nil {
			c.Status = *update.Status
		}
		if update.Priority != nil {
			c.Priority = *update.Priority
		}
		c.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeCaseKey(c.Id), storage.MarshalCase(c)); err != nil {
			return err
		}

		result = c
		return tx.Commit()
	}, true)
	return result, err
}

// GetCase retrieves a case by internal ID.
func (r *CaseRepository) GetCase(ctx context.Context, id core.ID) (*core.Case, error) {
	var result *core.Case
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readCase(tx, makeCaseKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCasesWithExternalIds retrieves every case carrying a non-zero external
// ticket id by walking the external-id index in ascending id order.
func (r *CaseRepository) GetCasesWithExternalIds(ctx context.Context) ([]*core.Case, error) {
	var results []*core.Case
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(caseExternalIdx + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var caseID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				caseID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			c, err := r.readCase(tx, makeCaseKey(caseID))
			if err != nil {
				return err
			}
			if c != nil {
				results = append(results, c)
			}
		}
		return nil
	}, false)

	return results, err
}

// readCase reads and deserializes a case.
// Returns nil without error when the key doesn't exist.
func (r *CaseRepository) readCase(tx *badger.Txn, key []byte) (*core.Case, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c *core.Case
	err = item.Value(func(val []byte) error {
		var err error
		c, err = storage.UnmarshalCase(val)
		return err
	})
	return c, err
}
