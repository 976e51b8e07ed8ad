// Package importer orchestrates synchronization from the helpdesk.
//
// Three entry points share one Reconciler:
//
//   - Importer.ImportAll: full bulk import of companies and tickets with a
//     summary result (status counts, average ticket age, unmapped tickets,
//     per-entity error list)
//   - Importer.SyncTicket: single-ticket real-time sync returning a tagged
//     SyncResult instead of raising on upstream not-found
//   - Service.HandleTicketEvent: webhook path, synchronous upsert plus
//     background attachment processing on a single-worker pool
//
// Only an unconfigured or unreachable helpdesk aborts a batch. Individual
// entity failures are accumulated and the batch continues.
package importer
