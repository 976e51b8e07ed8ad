package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/storage"
)

// OrganizationRepository implements storage.OrganizationRepository for BadgerDB.
type OrganizationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.OrganizationRepository = (*OrganizationRepository)(nil)

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(backend *Backend) (storage.OrganizationRepository, error) {
	idSeq, err := backend.GetSequence(orgIDSeq)
	if err != nil {
		return nil, err
	}

	return &OrganizationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *OrganizationRepository) Close() error {
	return r.idSeq.Release()
}

// FindOrganizationByExternalId looks up an organization via the
// external-company-id index.
func (r *OrganizationRepository) FindOrganizationByExternalId(ctx context.Context, externalCompanyID int64) (*core.Organization, error) {
	var result *core.Organization
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeOrgExternalKey(externalCompanyID))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var orgID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			orgID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readOrganization(tx, makeOrgKey(orgID))
		if err != nil {
			return err
		}
		if result == nil {
			// Dangling index entry; treat as absent so reconciliation recreates.
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// CreateOrganization adds an organization to storage, generating an internal
// id and maintaining the external-id index inside one transaction.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org *core.Organization) (*core.Organization, error) {
	if err := core.ValidateOrganization(org); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if org.Id == 0 {
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
			org.Id = core.ID(nextID)
		}

		org.InsertedAt = time.Now().UTC()
		org.UpdatedAt = org.InsertedAt

		if err := tx.Set(makeOrgKey(org.Id), storage.MarshalOrganization(org)); err != nil {
			return err
		}

		if org.ExternalCompanyId != 0 {
			key := makeOrgExternalKey(org.ExternalCompanyId)
			if err := tx.Set(key, storage.MarshalID(org.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return org, err
}

// GetOrganization retrieves an organization by internal ID.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id core.ID) (*core.Organization, error) {
	var result *core.Organization
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readOrganization(tx, makeOrgKey(id))
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

// readOrganization reads and deserializes an organization.
// Returns nil without error when the key doesn't exist.
func (r *OrganizationRepository) readOrganization(tx *badger.Txn, key []byte) (*core.Organization, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var org *core.Organization
	err = item.Value(func(val []byte) error {
		var err error
		org, err = storage.UnmarshalOrganization(val)
		return err
	})
	return org, err
}
