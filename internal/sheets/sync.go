package sheets

import (
	"context"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/session"
)

// Target receives the planning import.
type Target interface {
	Current() *model.Snapshot
	ImportSnapshot(ctx context.Context, imported *model.Snapshot) (*session.ImportReport, error)
}

// SyncResult reports one sync run.
type SyncResult struct {
	Rows    int                   `json:"rows"`
	Skipped int                   `json:"skipped"`
	Import  *session.ImportReport `json:"import,omitempty"`
}

// Sync fetches tabs and merges their visits into target.
func Sync(ctx context.Context, c *Client, tabs []Tab, target Target) (*SyncResult, error) {
	p, err := c.FetchPlanning(ctx, tabs)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Rows: len(p.Rows), Skipped: p.Skipped}
	report, err := target.ImportSnapshot(ctx, p.Snapshot(target.Current()))
	res.Import = report
	if err != nil {
		return res, err
	}
	return res, nil
}
