// Package sheets reads the visit planning kept in a published Google Sheet.
//
// Each tab is downloaded as CSV, its header row located by column name, and
// every row with a speaker and a date becomes a visit. The result is merged
// like any other import, so running a sync twice changes nothing.
package sheets
