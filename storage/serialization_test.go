package storage

import (
	"testing"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	original := &core.Case{
		Id:                42,
		ExternalTicketId:  9001,
		ExternalCompanyId: 10,
		Subject:           "Shoulder injury at warehouse",
		CaseType:          core.DefaultCaseType,
		Status:            core.StatusInProgress,
		Priority:          core.PriorityHigh,
		CompanyName:       "Acme Logistics",
		OrganizationId:    7,
		RequesterId:       501,
		AssigneeId:        502,
		AgeDays:           12,
		Tags:              []string{"injury", "warehouse"},
		CustomFields:      `{"site":"melbourne","shift":"night"}`,
		CreatedAt:         now.AddDate(0, 0, -12),
		UpdatedAt:         now,
		InsertedAt:        now,
	}

	decoded, err := UnmarshalCase(MarshalCase(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCaseRoundTrip_ZeroBackReferences(t *testing.T) {
	original := &core.Case{
		Id:       1,
		Subject:  "walk-in report, no helpdesk linkage",
		CaseType: core.DefaultCaseType,
		Status:   core.StatusNew,
		Priority: core.PriorityMedium,
	}

	decoded, err := UnmarshalCase(MarshalCase(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
	assert.Zero(t, decoded.ExternalTicketId)
	assert.True(t, decoded.CreatedAt.IsZero())
}

func TestOrganizationRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	original := &core.Organization{
		Id:                3,
		Name:              "Acme Logistics",
		Slug:              "acme-logistics-10",
		ExternalCompanyId: 10,
		Domains:           []string{"acme.example", "acme-logistics.example"},
		Description:       "freight and warehousing",
		InsertedAt:        now,
		UpdatedAt:         now,
	}

	decoded, err := UnmarshalOrganization(MarshalOrganization(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestChunkRoundTrip(t *testing.T) {
	original := &core.EmbeddingChunk{
		DocumentId: core.DocumentIDFor(42, 1001, "medical-certificate.pdf"),
		CaseId:     42,
		Index:      2,
		Text:       "Patient is fit for light duties.",
		Vector:     []float32{0.25, -0.5, 0.125},
		Filename:   "medical-certificate.pdf",
		Kind:       "medical_certificate",
	}

	decoded, err := UnmarshalChunk(MarshalChunk(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalCase_Truncated(t *testing.T) {
	data := MarshalCase(&core.Case{Id: 1, Subject: "x"})
	_, err := UnmarshalCase(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
