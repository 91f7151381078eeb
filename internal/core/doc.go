// Package core runs spreadsheet imports against the persisted record set.
//
// It is independent of any transport and can be driven by web handlers, a CLI
// or tests.
//
// # Import flow
//
//  1. Take the import slot ([ImportLimiter], one slot) so imports never interleave.
//  2. Read the batch with a [source.Reader].
//  3. Load the persisted set from the [store.Store].
//  4. Merge with [merge.Engine]; the report says what changed.
//  5. Save the merged set unless the batch was empty or the run is a preview.
//
// A failure at any step leaves the persisted set untouched. Every run, failed or
// not, is kept in a bounded in-memory history under a UUID.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Codes:
//
//   - SRC001-SRC006: source file errors (missing, format, size, sheet, parse)
//   - KEY001: no key column could be chosen
//   - STO001-STO002: storage read and write failures
//   - IMP001-IMP004: busy, unknown import, cancelled, timed out
//   - RATE001: rate limited
//   - ERR000: anything else
package core
