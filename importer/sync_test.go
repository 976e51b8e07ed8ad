package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/helpdesk"
)

func TestSyncTicket_CreatesCaseAndOrganization(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	f.source.Companies = []*helpdesk.Company{{Id: 9001, Name: "Acme Logistics"}}
	f.source.Tickets = []*helpdesk.Ticket{
		{Id: 5001, Subject: "Medical renewal", Status: 3, Priority: 2, CompanyId: 9001, RequesterId: 31},
	}

	result := f.importer.SyncTicket(ctx, 5001)
	require.True(t, result.OK, "reason: %s", result.Reason)
	require.NotZero(t, result.CaseId)
	assert.Equal(t, core.ID(31), result.WorkerId)

	c, err := f.caseRepo.GetCase(ctx, result.CaseId)
	require.NoError(t, err)
	assert.Equal(t, core.StatusInProgress, c.Status)
	assert.Equal(t, "Acme Logistics", c.CompanyName)

	_, err = f.orgRepo.FindOrganizationByExternalId(ctx, 9001)
	assert.NoError(t, err, "sync creates the organization when new")
}

func TestSyncTicket_Idempotent(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	f.source.Tickets = []*helpdesk.Ticket{{Id: 5001, Subject: "Renewal", Status: 2, Priority: 1}}

	first := f.importer.SyncTicket(ctx, 5001)
	second := f.importer.SyncTicket(ctx, 5001)
	require.True(t, first.OK)
	require.True(t, second.OK)
	assert.Equal(t, first.CaseId, second.CaseId)

	cases, err := f.caseRepo.GetCasesWithExternalIds(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestSyncTicket_NotFound(t *testing.T) {
	f := newImporterFixture(t)

	result := f.importer.SyncTicket(context.Background(), 404)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "not found")
}

func TestSyncTicket_Unavailable(t *testing.T) {
	f := newImporterFixture(t)
	f.source.GetTicketFunc = func(ctx context.Context, id int64) (*helpdesk.Ticket, error) {
		return nil, helpdesk.ErrUnavailable
	}

	result := f.importer.SyncTicket(context.Background(), 5001)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "unavailable")
}

func TestSyncTicket_NotConfigured(t *testing.T) {
	f := newImporterFixture(t)
	f.source.Available = false

	result := f.importer.SyncTicket(context.Background(), 5001)
	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "not configured")
}

func TestSyncTicket_CompanyFetchFailureLeavesCaseUnlinked(t *testing.T) {
	f := newImporterFixture(t)
	ctx := context.Background()

	f.source.Tickets = []*helpdesk.Ticket{
		{Id: 5001, Subject: "Renewal", Status: 2, Priority: 1, CompanyId: 9001},
	}
	// Company 9001 is not in the fixtures, so the lookup 404s

	result := f.importer.SyncTicket(ctx, 5001)
	require.True(t, result.OK, "a missing company must not fail the sync")

	c, err := f.caseRepo.GetCase(ctx, result.CaseId)
	require.NoError(t, err)
	assert.Zero(t, c.OrganizationId)
	assert.Equal(t, int64(9001), c.ExternalCompanyId, "back-reference kept for forward repair")
}
