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


package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/helpdesk"
	"github.com/arborhealth/casesync/reconcile"
)

// Importer drives ticket and company synchronization from the helpdesk into
// internal storage, either as a full bulk import or one ticket at a time.
type Importer struct {
	source     helpdesk.Source
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

// NewImporter creates an importer over the given source and reconciler.
func NewImporter(source helpdesk.Source, reconciler *reconcile.Reconciler, logger *slog.Logger) (*Importer, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if reconciler == nil {
		return nil, ErrReconcilerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		source:     source,
		reconciler: reconciler,
		logger:     logger.With("component", "importer"),
	}, nil
}

// TicketData is the per-ticket projection carried in an import summary:
// the external id plus the mapped internal fields, computed at import time.
type TicketData struct {
	Id        int64
	Subject   string
	Status    core.CaseStatus
	Priority  core.CasePriority
	CreatedAt time.Time
	AgeDays   int
}

// ImportResult summarizes a bulk import. Tickets are grouped under their
// resolving company's external id; tickets whose company id is absent or
// unknown land in Unmapped instead. Errors lists per-entity reconciliation
// failures; a non-empty list means completed with partial failure, not a
// hard failure.
type ImportResult struct {
	CompaniesFetched   int
	TicketsFetched     int
	CompaniesPersisted int
	CasesPersisted     int
	TicketsByCompany   map[int64][]TicketData
	Unmapped           []TicketData
	StatusCounts       map[core.CaseStatus]int
	AverageAgeDays     float64
	Errors             []string
}

// ticketProjection is a ticket bucketed under its resolving company.
type ticketProjection struct {
	ticket  *helpdesk.Ticket
	company *helpdesk.Company
}

// ImportAll fetches every company and every ticket (resolved ones included)
// and upserts them through the reconciler. Only an unreachable or
// unconfigured source is fatal; once fetching succeeded, per-entity errors
// accumulate in the result and the batch continues.
func (i *Importer) ImportAll(ctx context.Context, since *time.Time) (*ImportResult, error) {
	if !i.source.IsAvailable() {
		return nil, helpdesk.ErrNotConfigured
	}

	companies, err := i.source.FetchAllCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	tickets, err := i.source.FetchAllTickets(ctx, since, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}

	result := &ImportResult{
		CompaniesFetched: len(companies),
		TicketsFetched:   len(tickets),
		TicketsByCompany: make(map[int64][]TicketData),
		StatusCounts:     make(map[core.CaseStatus]int),
	}

	companyByID := make(map[int64]*helpdesk.Company, len(companies))
	for _, company := range companies {
		companyByID[company.Id] = company
	}

	// Categorize tickets and accumulate summary counters from the fetch,
	// independent of persistence outcomes.
	now := time.Now().UTC()
	totalAge := 0
	var projections []ticketProjection
	for _, ticket := range tickets {
		data := TicketData{
			Id:        ticket.Id,
			Subject:   ticket.Subject,
			Status:    core.MapStatus(ticket.Status),
			Priority:  core.MapPriority(ticket.Priority),
			CreatedAt: ticket.CreatedAt,
			AgeDays:   ticket.AgeDays(now),
		}

		company := companyByID[ticket.CompanyId] // nil when absent or unknown
		if company == nil {
			result.Unmapped = append(result.Unmapped, data)
		} else {
			result.TicketsByCompany[company.Id] = append(result.TicketsByCompany[company.Id], data)
		}
		projections = append(projections, ticketProjection{ticket: ticket, company: company})

		result.StatusCounts[data.Status]++
		totalAge += data.AgeDays
	}
	if len(tickets) > 0 {
		result.AverageAgeDays = float64(totalAge) / float64(len(tickets))
	}

	// Persist companies first so every mapped ticket finds its organization.
	orgByCompanyID := make(map[int64]core.ID, len(companies))
	for _, company := range companies {
		orgID, err := i.reconciler.ResolveOrganization(ctx, company)
		if err != nil {
			i.logger.Warn("company reconciliation failed", "companyId", company.Id, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("company %d (%s): %v", company.Id, company.Name, err))
			continue
		}
		orgByCompanyID[company.Id] = orgID
		result.CompaniesPersisted++
	}

	for _, proj := range projections {
		var orgID core.ID
		var companyName string
		if proj.company != nil {
			orgID = orgByCompanyID[proj.company.Id]
			companyName = proj.company.Name
		}

		if _, err := i.reconciler.ResolveCase(ctx, proj.ticket, orgID, companyName); err != nil {
			i.logger.Warn("ticket reconciliation failed", "ticketId", proj.ticket.Id, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("ticket %d: %v", proj.ticket.Id, err))
			continue
		}
		result.CasesPersisted++
	}

	i.logger.Info("bulk import finished",
		"companies", result.CompaniesPersisted,
		"cases", result.CasesPersisted,
		"unmapped", len(result.Unmapped),
		"errors", len(result.Errors))
	return result, nil
}
