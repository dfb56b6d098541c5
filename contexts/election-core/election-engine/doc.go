// Package electionengine implements the election lifecycle, eligibility and
// ballot ledger core inside the election-core context.
//
// The module owns the Init -> Voting -> Closed state machine, the per-election
// whitelist and electoral roll, the atomic one-ballot-per-(election, position,
// voter) acceptance path, and deterministic result tallies computed from the
// ledger. It keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package electionengine
