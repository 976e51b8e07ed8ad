package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Source is the read-only boundary to the external helpdesk platform.
// Implementations must be safe for concurrent use.
type Source interface {
	// IsAvailable reports whether the source is configured. It is a
	// configuration check only and makes no network call.
	IsAvailable() bool

	// FetchAllTickets retrieves every ticket, paginated. A non-nil since
	// restricts to tickets updated at or after that time. When
	// includeResolved is false, tickets already resolved or closed upstream
	// are filtered out.
	FetchAllTickets(ctx context.Context, since *time.Time, includeResolved bool) ([]*Ticket, error)

	// FetchAllCompanies retrieves every company, paginated.
	FetchAllCompanies(ctx context.Context) ([]*Company, error)

	// GetTicket retrieves a single ticket by its external id.
	// Returns ErrTicketNotFound if the platform does not recognize the id.
	GetTicket(ctx context.Context, id int64) (*Ticket, error)

	// GetCompany retrieves a single company by its external id.
	// Returns ErrCompanyNotFound if the platform does not recognize the id.
	GetCompany(ctx context.Context, id int64) (*Company, error)

	// GetTicketAttachments lists the attachments of a ticket.
	GetTicketAttachments(ctx context.Context, ticketID int64) ([]*Attachment, error)

	// DownloadAttachment fetches the raw bytes behind an attachment URL.
	DownloadAttachment(ctx context.Context, attachmentURL string) ([]byte, error)
}

// Client implements Source against the helpdesk REST API.
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

var _ Source = (*Client)(nil)

// NewClient creates a helpdesk API client from the configuration.
// The configuration is normalized; a missing domain or API key surfaces later
// as ErrNotConfigured from each call, so a client can always be constructed.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	config.Normalize()

	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default().With("component", "helpdesk-client"),
	}
}

// IsAvailable reports whether the client has a domain and API key configured.
func (c *Client) IsAvailable() bool {
	return c.config.Validate() == nil
}

// FetchAllTickets retrieves every ticket page by page.
func (c *Client) FetchAllTickets(ctx context.Context, since *time.Time, includeResolved bool) ([]*Ticket, error) {
	var all []*Ticket

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", fmt.Sprintf("%d", c.config.PageSize))
		query.Set("page", fmt.Sprintf("%d", page))
		if since != nil {
			query.Set("updated_since", since.UTC().Format(time.RFC3339))
		}

		var tickets []*Ticket
		if err := c.doRequest(ctx, http.MethodGet, "/api/v2/tickets?"+query.Encode(), &tickets); err != nil {
			return nil, err
		}
		if len(tickets) == 0 {
			break
		}

		for _, ticket := range tickets {
			if !includeResolved {
				status := ticket.Status
				if status == 4 || status == 5 {
					continue
				}
			}
			all = append(all, ticket)
		}

		if len(tickets) < c.config.PageSize {
			break
		}
	}

	c.logger.Debug("fetched tickets", "count", len(all))
	return all, nil
}

// FetchAllCompanies retrieves every company page by page.
func (c *Client) FetchAllCompanies(ctx context.Context) ([]*Company, error) {
	var all []*Company

	for page := 1; ; page++ {
		path := fmt.Sprintf("/api/v2/companies?per_page=%d&page=%d", c.config.PageSize, page)

		var companies []*Company
		if err := c.doRequest(ctx, http.MethodGet, path, &companies); err != nil {
			return nil, err
		}
		if len(companies) == 0 {
			break
		}

		all = append(all, companies...)

		if len(companies) < c.config.PageSize {
			break
		}
	}

	c.logger.Debug("fetched companies", "count", len(all))
	return all, nil
}

// GetTicket retrieves a single ticket by id.
func (c *Client) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	var ticket Ticket
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v2/tickets/%d", id), &ticket)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
		}
		return nil, err
	}
	return &ticket, nil
}

// GetCompany retrieves a single company by id.
func (c *Client) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var company Company
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v2/companies/%d", id), &company)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrCompanyNotFound, id)
		}
		return nil, err
	}
	return &company, nil
}

// GetTicketAttachments lists the attachments of a ticket. The platform ships
// them embedded in the ticket resource.
func (c *Client) GetTicketAttachments(ctx context.Context, ticketID int64) ([]*Attachment, error) {
	var resp struct {
		Attachments []*Attachment `json:"attachments"`
	}
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v2/tickets/%d", ticketID), &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, ticketID)
		}
		return nil, err
	}
	return resp.Attachments, nil
}

// DownloadAttachment fetches the raw attachment bytes. Attachment URLs are
// pre-signed by the platform, so no auth header is attached.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentURL string) ([]byte, error) {
	if !c.IsAvailable() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachmentURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// statusError carries a non-2xx HTTP status through the error chain.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("helpdesk API returned status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

// doRequest performs an authenticated API request and decodes a JSON response
// into result when result is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, result any) error {
	if !c.IsAvailable() {
		return ErrNotConfigured
	}

	endpoint := c.config.Endpoint() + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	// The platform authenticates with the API key as basic-auth username.
	req.SetBasicAuth(c.config.APIKey, "X")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		return &statusError{status: resp.StatusCode, body: string(body)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding helpdesk response: %w", err)
		}
	}
	return nil
}
