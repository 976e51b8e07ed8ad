package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/storage"
	"github.com/arborhealth/casesync/storage/badger"
)

func newTestReconciler(t *testing.T) (*Reconciler, storage.OrganizationRepository, storage.CaseRepository) {
	t.Helper()
	orgRepo, caseRepo, docRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() })

	r, err := NewReconciler(orgRepo, caseRepo, nil)
	require.NoError(t, err)
	return r, orgRepo, caseRepo
}

func TestResolveOrganization_CreatesOnce(t *testing.T) {
	r, orgRepo, _ := newTestReconciler(t)
	ctx := context.Background()

	company := &helpdesk.Company{
		Id:      9001,
		Name:    "Acme Logistics GmbH",
		Domains: []string{"acme.example"},
	}

	id1, err := r.ResolveOrganization(ctx, company)
	require.NoError(t, err)
	require.NotZero(t, id1)

	// Second resolve is a pure lookup hit
	id2, err := r.ResolveOrganization(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	org, err := orgRepo.GetOrganization(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "acme-logistics-gmbh-9001", org.Slug)
	assert.Equal(t, int64(9001), org.ExternalCompanyId)
	assert.Equal(t, []string{"acme.example"}, org.Domains)
}

func TestResolveCase_CreateMapsFields(t *testing.T) {
	r, _, caseRepo := newTestReconciler(t)
	ctx := context.Background()

	created := time.Now().UTC().Add(-72 * time.Hour)
	ticket := &helpdesk.Ticket{
		Id:           5001,
		Subject:      "Driver medical assessment",
		Status:       3, // pending upstream
		Priority:     4, // urgent upstream
		CompanyId:    9001,
		RequesterId:  31,
		ResponderId:  77,
		Tags:         []string{"medical"},
		CustomFields: map[string]any{"cf_region": "north"},
		CreatedAt:    created,
		UpdatedAt:    created,
	}

	caseID, err := r.ResolveCase(ctx, ticket, 4, "Acme Logistics GmbH")
	require.NoError(t, err)

	c, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), c.ExternalTicketId)
	assert.Equal(t, int64(9001), c.ExternalCompanyId)
	assert.Equal(t, core.StatusInProgress, c.Status)
	assert.Equal(t, core.PriorityUrgent, c.Priority)
	assert.Equal(t, core.ID(4), c.OrganizationId)
	assert.Equal(t, "Acme Logistics GmbH", c.CompanyName)
	assert.Equal(t, core.DefaultCaseType, c.CaseType)
	assert.Equal(t, int64(77), c.AssigneeId)
	assert.Equal(t, 3, c.AgeDays)
	assert.JSONEq(t, `{"cf_region":"north"}`, c.CustomFields)
}

func TestResolveCase_Idempotent(t *testing.T) {
	r, _, caseRepo := newTestReconciler(t)
	ctx := context.Background()

	ticket := &helpdesk.Ticket{Id: 5002, Subject: "Renewal", Status: 2, Priority: 1}

	id1, err := r.ResolveCase(ctx, ticket, 0, "")
	require.NoError(t, err)
	id2, err := r.ResolveCase(ctx, ticket, 0, "")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	cases, err := caseRepo.GetCasesWithExternalIds(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestResolveCase_ForwardRepair(t *testing.T) {
	r, _, caseRepo := newTestReconciler(t)
	ctx := context.Background()

	// First import: the ticket's company was not yet known
	ticket := &helpdesk.Ticket{Id: 5003, Subject: "Fitness clearance", Status: 2, Priority: 2}
	caseID, err := r.ResolveCase(ctx, ticket, 0, "")
	require.NoError(t, err)

	before, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	require.Zero(t, before.OrganizationId)
	require.Zero(t, before.ExternalCompanyId)

	// Re-sync once the company is resolved
	ticket.CompanyId = 9002
	repairedID, err := r.ResolveCase(ctx, ticket, 6, "Northwind Haulage")
	require.NoError(t, err)
	assert.Equal(t, caseID, repairedID)

	after, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, core.ID(6), after.OrganizationId)
	assert.Equal(t, "Northwind Haulage", after.CompanyName)
	assert.Equal(t, int64(9002), after.ExternalCompanyId)
	// Upstream status is unchanged, so the mapped status is too
	assert.Equal(t, core.StatusNew, after.Status)
}

func TestResolveCase_RefreshesStatusAndPriority(t *testing.T) {
	r, _, caseRepo := newTestReconciler(t)
	ctx := context.Background()

	ticket := &helpdesk.Ticket{Id: 5005, Subject: "Annual medical", Status: 2, Priority: 1}
	caseID, err := r.ResolveCase(ctx, ticket, 0, "")
	require.NoError(t, err)

	before, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	require.Equal(t, core.StatusNew, before.Status)
	require.Equal(t, core.PriorityLow, before.Priority)

	// The ticket closed and escalated upstream between syncs
	ticket.Status = 5
	ticket.Priority = 4
	againID, err := r.ResolveCase(ctx, ticket, 0, "")
	require.NoError(t, err)
	require.Equal(t, caseID, againID)

	after, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusComplete, after.Status)
	assert.Equal(t, core.PriorityUrgent, after.Priority)
}

func TestResolveCase_NoopWhenUnchanged(t *testing.T) {
	r, _, caseRepo := newTestReconciler(t)
	ctx := context.Background()

	ticket := &helpdesk.Ticket{Id: 5004, Subject: "Report review", Status: 2, Priority: 1, CompanyId: 9003}
	caseID, err := r.ResolveCase(ctx, ticket, 2, "Acme")
	require.NoError(t, err)

	before, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)

	_, err = r.ResolveCase(ctx, ticket, 2, "Acme")
	require.NoError(t, err)

	after, err := caseRepo.GetCase(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}
