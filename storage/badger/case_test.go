package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/storage"
)

func TestCaseBasics(t *testing.T) {
	orgRepo, caseRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() }()

	ctx := context.Background()

	c := &core.Case{
		ExternalTicketId:  5001,
		ExternalCompanyId: 9001,
		Subject:           "Driver medical renewal",
		CaseType:          core.DefaultCaseType,
		Status:            core.StatusNew,
		Priority:          core.PriorityMedium,
		CompanyName:       "Acme Clinics",
		Tags:              []string{"renewal", "medical"},
	}

	created, err := caseRepo.CreateCase(ctx, c)
	if err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}
	if created.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	got, err := caseRepo.GetCase(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to get case: %v", err)
	}
	if got.Subject != "Driver medical renewal" {
		t.Fatalf("Expected subject 'Driver medical renewal', got '%s'", got.Subject)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "renewal" {
		t.Fatalf("Unexpected tags: %v", got.Tags)
	}

	found, err := caseRepo.FindCaseByExternalId(ctx, 5001)
	if err != nil {
		t.Fatalf("Failed to find case by external id: %v", err)
	}
	if found.Id != created.Id {
		t.Fatalf("Expected id %d, got %d", created.Id, found.Id)
	}
}

func TestCaseNotFound(t *testing.T) {
	orgRepo, caseRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := caseRepo.GetCase(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := caseRepo.FindCaseByExternalId(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := caseRepo.UpdateCase(ctx, 404, &core.CaseUpdate{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCaseUpdatePartialFields(t *testing.T) {
	orgRepo, caseRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() }()

	ctx := context.Background()

	created, err := caseRepo.CreateCase(ctx, &core.Case{
		ExternalTicketId: 5002,
		Subject:          "Annual fitness assessment",
		CaseType:         core.DefaultCaseType,
		Status:           core.StatusNew,
		Priority:         core.PriorityLow,
		CompanyName:      "Old Name",
	})
	if err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	orgID := core.ID(7)
	newName := "New Name"
	status := core.StatusInProgress
	updated, err := caseRepo.UpdateCase(ctx, created.Id, &core.CaseUpdate{
		OrganizationId: &orgID,
		CompanyName:    &newName,
		Status:         &status,
	})
	if err != nil {
		t.Fatalf("Failed to update case: %v", err)
	}

	if updated.OrganizationId != 7 {
		t.Fatalf("Expected organization id 7, got %d", updated.OrganizationId)
	}
	if updated.CompanyName != "New Name" {
		t.Fatalf("Expected company name 'New Name', got '%s'", updated.CompanyName)
	}
	if updated.Status != core.StatusInProgress {
		t.Fatalf("Expected status %s, got %s", core.StatusInProgress, updated.Status)
	}
	// Untouched fields survive
	if updated.Priority != core.PriorityLow {
		t.Fatalf("Expected priority %s, got %s", core.PriorityLow, updated.Priority)
	}
	if updated.Subject != "Annual fitness assessment" {
		t.Fatalf("Unexpected subject '%s'", updated.Subject)
	}

	reread, err := caseRepo.GetCase(ctx, created.Id)
	if err != nil {
		t.Fatalf("Failed to reread case: %v", err)
	}
	if reread.CompanyName != "New Name" {
		t.Fatal("Update was not persisted")
	}
}

func TestGetCasesWithExternalIds(t *testing.T) {
	orgRepo, caseRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); caseRepo.Close(); orgRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Insert out of external-id order plus one case with no external linkage
	for _, tid := range []int64{5300, 5100, 5200} {
		_, err := caseRepo.CreateCase(ctx, &core.Case{
			ExternalTicketId: tid,
			Subject:          "ticket",
			CaseType:         core.DefaultCaseType,
			Status:           core.StatusNew,
			Priority:         core.PriorityMedium,
		})
		if err != nil {
			t.Fatalf("Failed to create case %d: %v", tid, err)
		}
	}
	_, err = caseRepo.CreateCase(ctx, &core.Case{
		Subject:  "manual case",
		CaseType: core.DefaultCaseType,
		Status:   core.StatusNew,
		Priority: core.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("Failed to create unlinked case: %v", err)
	}

	cases, err := caseRepo.GetCasesWithExternalIds(ctx)
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("Expected 3 cases, got %d", len(cases))
	}
	for i, want := range []int64{5100, 5200, 5300} {
		if cases[i].ExternalTicketId != want {
			t.Fatalf("Expected external id %d at position %d, got %d", want, i, cases[i].ExternalTicketId)
		}
	}
}
