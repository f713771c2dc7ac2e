// Package reconcile merges planning snapshots without creating duplicates.
//
// The pipeline is:
//
//	imported snapshot ─┬─ Unify (speakers, hosts; keyed by normalized name)
//	                   ├─ MergeVisits (buckets keyed by speaker name + date)
//	                   ├─ Rehydrate (copy canonical speaker/host fields onto visits)
//	                   └─ MergeTalks, last-writer-wins on profile and templates
//
// Every function here is pure: inputs are never modified and results are
// fresh collections. The only state change happens in the caller, which swaps
// a whole snapshot reference at once.
//
// # Invariants
//
//   - A visit key is NormalizeName(nom) + "|" + visitDate
//   - Partition (active/archived) follows the source list, never Visit.Status
//   - Incoming non-empty fields win; empty incoming fields keep the existing value
//   - Rehydration never blanks a visit whose speaker or host is unknown
//   - Host sentinels ("À définir", "Pas nécessaire") are never rewritten
package reconcile
