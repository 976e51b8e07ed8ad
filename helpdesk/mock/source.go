package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/arborhealth/casesync/helpdesk"
)

// MockSource is a test double for helpdesk.Source.
// It serves fixture tickets, companies and attachments from memory and
// allows custom behavior injection via function fields.
type MockSource struct {
	Tickets     []*helpdesk.Ticket
	Companies   []*helpdesk.Company
	Attachments map[int64][]*helpdesk.Attachment // keyed by ticket id
	Downloads   map[string][]byte                // keyed by attachment URL
	Available   bool

	// Function fields override the fixture-backed defaults when set.
	FetchAllTicketsFunc      func(ctx context.Context, since *time.Time, includeResolved bool) ([]*helpdesk.Ticket, error)
	FetchAllCompaniesFunc    func(ctx context.Context) ([]*helpdesk.Company, error)
	GetTicketFunc            func(ctx context.Context, id int64) (*helpdesk.Ticket, error)
	GetCompanyFunc           func(ctx context.Context, id int64) (*helpdesk.Company, error)
	GetTicketAttachmentsFunc func(ctx context.Context, ticketID int64) ([]*helpdesk.Attachment, error)
	DownloadAttachmentFunc   func(ctx context.Context, url string) ([]byte, error)

	downloadCount int
}

var _ helpdesk.Source = (*MockSource)(nil)

// NewMockSource creates a mock source that reports itself available.
func NewMockSource() *MockSource {
	return &MockSource{
		Attachments: make(map[int64][]*helpdesk.Attachment),
		Downloads:   make(map[string][]byte),
		Available:   true,
	}
}

// IsAvailable reports the configured availability flag.
func (m *MockSource) IsAvailable() bool {
	return m.Available
}

// FetchAllTickets returns the fixture tickets.
func (m *MockSource) FetchAllTickets(ctx context.Context, since *time.Time, includeResolved bool) ([]*helpdesk.Ticket, error) {
	if m.FetchAllTicketsFunc != nil {
		return m.FetchAllTicketsFunc(ctx, since, includeResolved)
	}
	if !m.Available {
		return nil, helpdesk.ErrNotConfigured
	}

	var out []*helpdesk.Ticket
	for _, ticket := range m.Tickets {
		if !includeResolved && (ticket.Status == 4 || ticket.Status == 5) {
			continue
		}
		if since != nil && ticket.UpdatedAt.Before(*since) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

// FetchAllCompanies returns the fixture companies.
func (m *MockSource) FetchAllCompanies(ctx context.Context) ([]*helpdesk.Company, error) {
	if m.FetchAllCompaniesFunc != nil {
		return m.FetchAllCompaniesFunc(ctx)
	}
	if !m.Available {
		return nil, helpdesk.ErrNotConfigured
	}
	return m.Companies, nil
}

// GetTicket returns the fixture ticket with the given id.
func (m *MockSource) GetTicket(ctx context.Context, id int64) (*helpdesk.Ticket, error) {
	if m.GetTicketFunc != nil {
		return m.GetTicketFunc(ctx, id)
	}
	if !m.Available {
		return nil, helpdesk.ErrNotConfigured
	}
	for _, ticket := range m.Tickets {
		if ticket.Id == id {
			return ticket, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", helpdesk.ErrTicketNotFound, id)
}

// GetCompany returns the fixture company with the given id.
func (m *MockSource) GetCompany(ctx context.Context, id int64) (*helpdesk.Company, error) {
	if m.GetCompanyFunc != nil {
		return m.GetCompanyFunc(ctx, id)
	}
	if !m.Available {
		return nil, helpdesk.ErrNotConfigured
	}
	for _, company := range m.Companies {
		if company.Id == id {
			return company, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", helpdesk.ErrCompanyNotFound, id)
}

// GetTicketAttachments returns the fixture attachments for a ticket.
func (m *MockSource) GetTicketAttachments(ctx context.Context, ticketID int64) ([]*helpdesk.Attachment, error) {
	if m.GetTicketAttachmentsFunc != nil {
		return m.GetTicketAttachmentsFunc(ctx, ticketID)
	}
	if !m.Available {
		return nil, helpdesk.ErrNotConfigured
	}
	return m.Attachments[ticketID], nil
}

// DownloadAttachment returns the fixture bytes for a URL.
func (m *MockSource) DownloadAttachment(ctx context.Context, url string) ([]byte, error) {
	m.downloadCount++
	if m.DownloadAttachmentFunc != nil {
		return m.DownloadAttachmentFunc(ctx, url)
	}
	data, ok := m.Downloads[url]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", url)
	}
	return data, nil
}

// DownloadCount returns how many downloads were attempted.
func (m *MockSource) DownloadCount() int {
	return m.downloadCount
}
