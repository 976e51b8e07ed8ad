// Copyright 2025 Arbor Health Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/storage"
)

// Reconciler performs idempotent upserts mapping external helpdesk records
// onto internal organizations and cases, keyed by external id.
type Reconciler struct {
	orgRepository  storage.OrganizationRepository
	caseRepository storage.CaseRepository
	logger         *slog.Logger
}

// NewReconciler creates a reconciler over the given repositories.
func NewReconciler(
	orgRepository storage.OrganizationRepository,
	caseRepository storage.CaseRepository,
	logger *slog.Logger,
) (*Reconciler, error) {
	if orgRepository == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	if caseRepository == nil {
		return nil, fmt.Errorf("case repository required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		orgRepository:  orgRepository,
		caseRepository: caseRepository,
		logger:         logger.With("component", "reconciler"),
	}, nil
}

// ResolveOrganization returns the internal organization id for an external
// company, creating the organization on first sight. A lookup hit returns
// the existing id with no mutation.
func (r *Reconciler) ResolveOrganization(ctx context.Context, company *helpdesk.Company) (core.ID, error) {
	existing, err := r.orgRepository.FindOrganizationByExternalId(ctx, company.Id)
	if err == nil {
		return existing.Id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up organization for company %d: %w", company.Id, err)
	}

	org := &core.Organization{
		Name:              company.Name,
		Slug:              core.SlugForCompany(company.Name, company.Id),
		ExternalCompanyId: company.Id,
		Domains:           company.Domains,
		Description:       company.Description,
	}
	created, err := r.orgRepository.CreateOrganization(ctx, org)
	if err != nil {
		return 0, fmt.Errorf("failed to create organization for company %d: %w", company.Id, err)
	}

	r.logger.Info("created organization",
		"organizationId", created.Id,
		"externalCompanyId", company.Id,
		"slug", created.Slug)
	return created.Id, nil
}

// ResolveCase upserts the internal case for an external ticket and returns
// its id. organizationID and companyName may be zero values when the
// ticket's company is unknown; a later sync forward-repairs the linkage.
func (r *Reconciler) ResolveCase(ctx context.Context, ticket *helpdesk.Ticket, organizationID core.ID, companyName string) (core.ID, error) {
	existing, err := r.caseRepository.FindCaseByExternalId(ctx, ticket.Id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up case for ticket %d: %w", ticket.Id, err)
	}
	if err == nil {
		return r.repairCase(ctx, existing, ticket, organizationID, companyName)
	}
	return r.createCase(ctx, ticket, organizationID, companyName)
}

// repairCase updates an existing case where it drifted from the external
// ticket: company linkage, the denormalized company name, and the mapped
// status/priority, which track the upstream lifecycle across re-syncs.
// Tickets imported before their company resolved get the external company
// id backfilled here.
func (r *Reconciler) repairCase(ctx context.Context, existing *core.Case, ticket *helpdesk.Ticket, organizationID core.ID, companyName string) (core.ID, error) {
	update := &core.CaseUpdate{}
	changed := false

	if organizationID != 0 && existing.OrganizationId != organizationID {
		update.OrganizationId = &organizationID
		changed = true
	}
	if companyName != "" && existing.CompanyName != companyName {
		update.CompanyName = &companyName
		changed = true
	}
	if existing.ExternalCompanyId == 0 && ticket.CompanyId != 0 {
		update.ExternalCompanyId = &ticket.CompanyId
		changed = true
	}
	if status := core.MapStatus(ticket.Status); existing.Status != status {
		update.Status = &status
		changed = true
	}
	if priority := core.MapPriority(ticket.Priority); existing.Priority != priority {
		update.Priority = &priority
		changed = true
	}

	if !changed {
		return existing.Id, nil
	}

	if _, err := r.caseRepository.UpdateCase(ctx, existing.Id, update); err != nil {
		return 0, fmt.Errorf("failed to update case %d for ticket %d: %w", existing.Id, ticket.Id, err)
	}

	r.logger.Info("repaired case linkage",
		"caseId", existing.Id,
		"externalTicketId", ticket.Id,
		"organizationId", organizationID)
	return existing.Id, nil
}

// createCase materializes a new case from the external ticket with mapped
// status and priority. Tags and custom fields are stored opaquely.
func (r *Reconciler) createCase(ctx context.Context, ticket *helpdesk.Ticket, organizationID core.ID, companyName string) (core.ID, error) {
	customFields := ""
	if len(ticket.CustomFields) > 0 {
		encoded, err := json.Marshal(ticket.CustomFields)
		if err != nil {
			// Unserializable custom fields are dropped, not fatal
			r.logger.Warn("failed to encode custom fields", "externalTicketId", ticket.Id, "error", err)
		} else {
			customFields = string(encoded)
		}
	}

	c := &core.Case{
		ExternalTicketId:  ticket.Id,
		ExternalCompanyId: ticket.CompanyId,
		Subject:           ticket.Subject,
		CaseType:          core.DefaultCaseType,
		Status:            core.MapStatus(ticket.Status),
		Priority:          core.MapPriority(ticket.Priority),
		CompanyName:       companyName,
		OrganizationId:    organizationID,
		RequesterId:       ticket.RequesterId,
		AssigneeId:        ticket.ResponderId,
		AgeDays:           ticket.AgeDays(time.Now().UTC()),
		Tags:              ticket.Tags,
		CustomFields:      customFields,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
	}

	created, err := r.caseRepository.CreateCase(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("failed to create case for ticket %d: %w", ticket.Id, err)
	}

	r.logger.Info("created case",
		"caseId", created.Id,
		"externalTicketId", ticket.Id,
		"status", created.Status,
		"priority", created.Priority)
	return created.Id, nil
}
