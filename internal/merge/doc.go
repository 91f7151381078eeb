// Package merge reconciles a freshly imported batch of records with the
// previously persisted set.
//
// # Pipeline
//
// A merge runs four steps, all in memory and in a single pass each:
//
//  1. Key resolution: the first record of the batch decides which column
//     identifies a record ([ResolveKey]). The configured preferred key wins when
//     that column exists; otherwise the batch's first column is used and a
//     warning is logged.
//  2. Keyed merge: the existing set is indexed by key, then each batch record is
//     added, replaces its counterpart (last writer wins), or is counted as a
//     duplicate when it is identical to what is already there
//     ([Engine.MergeWithKey]). Batch rows without a usable key are discarded.
//  3. Duplicate sweep: exact repeats that survived the keyed merge are dropped
//     ([Engine.Sweep]).
//  4. Report: counters for added, updated and removed duplicates, plus the final
//     row count and key column ([Report]).
//
// An empty batch short-circuits the pipeline and returns the existing set
// unchanged with [StatusEmptyBatch].
//
// # Equality
//
// Key matching and duplicate detection in step 2 use the loose, text-based
// comparison of [LooseComparator]: "5" and 5 are the same value, null and ""
// are the same value. The sweep in step 3 is exact and kind-sensitive.
//
// The engine holds no state between calls and does no locking; callers that
// persist the result must serialize merges themselves.
package merge
