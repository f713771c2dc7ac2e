// Package schema is the validation boundary for imported snapshot files.
//
// Decode checks the raw JSON against an embedded CUE schema, decodes it into
// model types and repairs what can be repaired. Its result is either Valid,
// carrying the snapshot and data-quality warnings, or Invalid, carrying every
// validation error found. Nothing unvalidated reaches the merge pipeline.
package schema
