// Package model defines the congregation planning data: speakers, hosts,
// visits, public talks and the snapshot that groups them.
//
// JSON tags follow the exported snapshot file format so that files written by
// earlier versions of the application decode without translation. This package
// imports nothing internal; every other package builds on it.
//
// Key constraints:
//   - A visit lives in exactly one partition of a Snapshot: Visits or ArchivedVisits
//   - Visit dates are calendar dates formatted YYYY-MM-DD, no time zone
//   - Speaker fields on a Visit are a denormalized copy and may drift
package model
