package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/arborhealth/casesync/core"
	"github.com/arborhealth/casesync/helpdesk"
)

// SyncResult is the tagged outcome of a single-ticket sync. Failures come
// back as OK=false with a human-readable reason instead of an error; callers
// on the webhook path report them, they don't crash on them.
type SyncResult struct {
	OK       bool
	CaseId   core.ID
	WorkerId core.ID // external requester behind the ticket, owner of any medical documents
	Reason   string
}

// SyncTicket fetches one ticket, resolves its company if present, and
// upserts the case. Safe to invoke repeatedly for the same external ticket
// id: the upsert converges instead of duplicating.
func (i *Importer) SyncTicket(ctx context.Context, ticketID int64) *SyncResult {
	if !i.source.IsAvailable() {
		return &SyncResult{Reason: "helpdesk service not configured"}
	}

	ticket, err := i.source.GetTicket(ctx, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, helpdesk.ErrTicketNotFound):
			return &SyncResult{Reason: fmt.Sprintf("ticket %d not found upstream", ticketID)}
		case errors.Is(err, helpdesk.ErrUnavailable):
			return &SyncResult{Reason: "helpdesk service unavailable"}
		default:
			return &SyncResult{Reason: fmt.Sprintf("failed to fetch ticket %d: %v", ticketID, err)}
		}
	}

	var orgID core.ID
	var companyName string
	if ticket.CompanyId != 0 {
		company, err := i.source.GetCompany(ctx, ticket.CompanyId)
		if err != nil {
			// A missing company leaves the case unlinked; a later sync repairs it
			i.logger.Warn("company fetch failed during sync", "companyId", ticket.CompanyId, "error", err)
		} else {
			orgID, err = i.reconciler.ResolveOrganization(ctx, company)
			if err != nil {
				return &SyncResult{Reason: fmt.Sprintf("failed to reconcile company %d: %v", company.Id, err)}
			}
			companyName = company.Name
		}
	}

	caseID, err := i.reconciler.ResolveCase(ctx, ticket, orgID, companyName)
	if err != nil {
		return &SyncResult{Reason: fmt.Sprintf("failed to reconcile ticket %d: %v", ticketID, err)}
	}

	i.logger.Info("ticket synced", "ticketId", ticketID, "caseId", caseID)
	return &SyncResult{
		OK:       true,
		CaseId:   caseID,
		WorkerId: core.ID(ticket.RequesterId),
	}
}
