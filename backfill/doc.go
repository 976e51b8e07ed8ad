// Package backfill provides batch attachment processing over already
// imported cases.
//
// The Backfiller walks every case with a helpdesk ticket back-reference and
// runs the document embedding pipeline on each one, sequentially and with a
// fixed inter-ticket delay that respects the external API's rate limits.
// Progress is reported to a configurable writer, and per-ticket failures
// accumulate in the result rather than aborting the run.
package backfill
