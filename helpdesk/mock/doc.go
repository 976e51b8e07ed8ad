// Package mock provides a test double for the helpdesk.Source interface.
//
// MockSource serves fixture tickets, companies and attachments from memory,
// with function fields for injecting failures:
//
//	src := mock.NewMockSource()
//	src.Tickets = []*helpdesk.Ticket{{Id: 1, Subject: "hurt shoulder", Status: 2}}
//	src.GetTicketFunc = func(ctx context.Context, id int64) (*helpdesk.Ticket, error) {
//	    return nil, helpdesk.ErrUnavailable
//	}
package mock
