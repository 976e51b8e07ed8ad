// Package helpdesk is the read-only boundary to the external helpdesk
// platform this system synchronizes from.
//
// The Source interface covers everything the sync pipeline needs: paginated
// ticket and company listings, single-record fetches, attachment listing and
// download, and a no-network availability check. Client implements Source
// against the platform's REST API; helpdesk/mock provides a function-field
// test double.
//
// External records (Ticket, Company, Attachment) are immutable snapshots.
// They are fetched per call, mapped into internal records by the reconcile
// package, and never persisted as-is.
package helpdesk
