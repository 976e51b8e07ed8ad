package helpdesk

import "time"

// Ticket is an immutable snapshot of a helpdesk ticket, fetched per call and
// never persisted as-is. Status and priority carry the platform's numeric
// codes; core.MapStatus/MapPriority translate them.
type Ticket struct {
	Id           int64          `json:"id"`
	Subject      string         `json:"subject"`
	Status       int            `json:"status"`
	Priority     int            `json:"priority"`
	CompanyId    int64          `json:"company_id"` // 0 when the ticket has no company
	RequesterId  int64          `json:"requester_id"`
	ResponderId  int64          `json:"responder_id"`
	Tags         []string       `json:"tags"`
	CustomFields map[string]any `json:"custom_fields"` // opaque, stored and forwarded, never interpreted
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AgeDays returns the ticket age in whole days at the given
// moment. Import records this value, it is not kept live.
func (t *Ticket) AgeDays(now time.Time) int {
	if t.CreatedAt.IsZero() || now.Before(t.CreatedAt) {
		return 0
	}
	return int(now.Sub(t.CreatedAt).Hours() / 24)
}

// Company is an immutable snapshot of a helpdesk company.
type Company struct {
	Id          int64    `json:"id"`
	Name        string   `json:"name"`
	Domains     []string `json:"domains"`
	Description string   `json:"description"`
}

// Attachment describes a file attached to a helpdesk ticket. Attachments are
// transient: only their derived documents and chunks are persisted.
type Attachment struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"attachment_url"`
}
