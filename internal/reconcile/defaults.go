package reconcile

import (
	"strings"

	"github.com/kbvlyon/visitsync/internal/model"
)

// DefaultVisitTime is the meeting time used when a visit has none.
const DefaultVisitTime = "14:30"

// ApplyVisitDefaults fills the fields a merged scheduled visit still lacks:
// time, host, status, location type and congregation. defaultTime falls back
// to DefaultVisitTime.
func ApplyVisitDefaults(visits []model.Visit, defaultTime string) []model.Visit {
	return applyDefaults(visits, defaultTime, model.StatusPending, model.UnassignedHost)
}

// ApplyArchivedDefaults is ApplyVisitDefaults for archived visits. They are
// past events: an empty status means completed and an empty host stays empty.
func ApplyArchivedDefaults(visits []model.Visit, defaultTime string) []model.Visit {
	return applyDefaults(visits, defaultTime, model.StatusCompleted, "")
}

func applyDefaults(visits []model.Visit, defaultTime string, status model.VisitStatus, host string) []model.Visit {
	if defaultTime == "" {
		defaultTime = DefaultVisitTime
	}
	out := make([]model.Visit, len(visits))
	for i, v := range visits {
		if strings.TrimSpace(v.VisitTime) == "" {
			v.VisitTime = defaultTime
		}
		if strings.TrimSpace(v.Host) == "" {
			v.Host = host
			v.HostID = ""
		}
		if v.Status == "" {
			v.Status = status
		}
		if v.LocationType == "" {
			v.LocationType = model.LocationPhysical
		}
		if strings.TrimSpace(v.Congregation) == "" {
			v.Congregation = model.DefaultCongregation
		}
		out[i] = v
	}
	return out
}
