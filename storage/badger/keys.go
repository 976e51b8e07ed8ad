package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/arborhealth/casesync/core"
)

// Key prefixes for different data types
const (
	orgRecordPrefix  = "orgrec"
	orgExternalIdx   = "orgext"
	orgIDSeq         = "orgrecseq"
	caseRecordPrefix = "caserec"
	caseExternalIdx  = "caseext"
	caseIDSeq        = "caserecseq"
	docRecordPrefix  = "docrec"
	chunkPrefix      = "chunkrec"
)

// makeOrgKey generates a key for an organization by internal ID.
func makeOrgKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", orgRecordPrefix, id))
}

// makeOrgExternalKey generates the external-company-id index key.
func makeOrgExternalKey(externalCompanyID int64) []byte {
	return []byte(fmt.Sprintf("%s:%d", orgExternalIdx, externalCompanyID))
}

// makeCaseKey generates a key for a case by internal ID.
func makeCaseKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", caseRecordPrefix, id))
}

// makeCaseExternalKey generates the external-ticket-id index key.
// The ticket id is written BigEndian so lexicographic iteration over the
// index visits cases in ascending external id order.
func makeCaseExternalKey(externalTicketID int64) []byte {
	prefix := caseExternalIdx + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(externalTicketID))
	return buf
}

// makeDocKey generates a key for a medical document by ID.
func makeDocKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docRecordPrefix, id))
}

// makeChunkKey generates a composite key for an embedding chunk.
// Format: prefix:documentID:index, both BigEndian so iteration within a
// document proceeds in ascending chunk-index order.
func makeChunkKey(documentID core.ID, index int) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkKey generates the key prefix covering every chunk of a document.
func makePartialChunkKey(documentID core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
