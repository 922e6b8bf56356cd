// Package history persists a ledger of packing runs in SQLite.
//
// Each run records its source and output folders, outcome, counters, and the
// archives it produced. The CLI reads the ledger for `stemzipper history`.
// The schema is versioned; a mismatch is reported with ErrSchemaMismatch
// rather than migrated.
package history
