// Package reconcile maps external helpdesk records onto internal records.
//
// Every write is an idempotent upsert keyed by an immutable external id:
// resolving the same company or ticket twice converges on one organization
// or case instead of duplicating it. The read-then-write of each upsert runs
// inside a single storage transaction.
package reconcile
