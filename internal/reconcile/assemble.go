package reconcile

import (
	"fmt"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/notify"
)

// Stats summarizes one assembly.
type Stats struct {
	Counts         model.Counts `json:"counts"`
	Duplicates     int          `json:"duplicates"`
	CrossPartition int          `json:"crossPartition"`
}

// Summary is the user-facing line reported after an import.
func (s Stats) Summary() string {
	return fmt.Sprintf("%d orateurs, %d contacts, %d visites, %d doublons fusionnés",
		s.Counts.Speakers, s.Counts.Hosts, s.Counts.Visits, s.Duplicates)
}

// AssembleResult is the output of Assemble.
type AssembleResult struct {
	Snapshot *model.Snapshot
	Stats    Stats
}

// Assembler merges an imported snapshot into the current one.
//
// The zero value is usable: it generates UUIDv7 visit ids, keeps
// cross-partition collisions in both lists and discards notifications.
type Assembler struct {
	IDs            ids.Generator
	Notifier       notify.Notifier
	CrossPartition CrossPartitionPolicy

	// DefaultTime is given to merged visits without a time.
	DefaultTime string
}

// CheckImport verifies that imported carries the required collections.
// A collection is missing when it is nil; an empty list is valid.
func CheckImport(imported *model.Snapshot) error {
	if imported == nil {
		return NewMalformedImportError([]string{"speakers", "hosts", "visits"})
	}
	var missing []string
	if imported.Speakers == nil {
		missing = append(missing, "speakers")
	}
	if imported.Hosts == nil {
		missing = append(missing, "hosts")
	}
	if imported.Visits == nil {
		missing = append(missing, "visits")
	}
	if len(missing) > 0 {
		return NewMalformedImportError(missing)
	}
	return nil
}

// Assemble returns a new snapshot combining current and imported. Neither
// input is modified. It fails with ErrMalformedImport, before computing
// anything, when imported lacks speakers, hosts or visits.
func (a *Assembler) Assemble(current, imported *model.Snapshot) (*AssembleResult, error) {
	if err := CheckImport(imported); err != nil {
		return nil, err
	}
	if current == nil {
		current = model.Empty()
	}

	speakers := UnifySpeakers(current.Speakers, imported.Speakers)
	hosts := UnifyHosts(current.Hosts, imported.Hosts)

	// Both sides are rehydrated before bucketing so visit keys use the
	// unified speaker names.
	dir := NewDirectory(speakers, hosts).
		WithSpeakerAliases(renamedSpeakers(current.Speakers, speakers)).
		WithHostAliases(renamedHosts(current.Hosts, hosts))
	merged := MergeVisits(
		Rehydrate(current.Visits, dir), Rehydrate(current.ArchivedVisits, dir),
		Rehydrate(imported.Visits, dir), Rehydrate(imported.ArchivedVisits, dir),
		MergeOptions{IDs: a.IDs, CrossPartition: a.CrossPartition},
	)

	out := &model.Snapshot{
		Speakers:                   speakers,
		Hosts:                      hosts,
		Visits:                     Rehydrate(ApplyVisitDefaults(merged.Active, a.DefaultTime), dir),
		ArchivedVisits:             Rehydrate(ApplyArchivedDefaults(merged.Archived, a.DefaultTime), dir),
		PublicTalks:                MergeTalks(current.PublicTalks, imported.PublicTalks),
		CongregationProfile:        current.CongregationProfile,
		CustomTemplates:            current.CustomTemplates,
		CustomHostRequestTemplates: current.CustomHostRequestTemplates,
		SavedViews:                 current.SavedViews,
		SpecialDates:               current.SpecialDates,
	}
	if imported.CongregationProfile != nil {
		p := *imported.CongregationProfile
		out.CongregationProfile = &p
	}
	if imported.CustomTemplates != nil {
		out.CustomTemplates = imported.CustomTemplates
	}
	if imported.CustomHostRequestTemplates != nil {
		out.CustomHostRequestTemplates = imported.CustomHostRequestTemplates
	}
	if imported.SavedViews != nil {
		out.SavedViews = imported.SavedViews
	}
	if imported.SpecialDates != nil {
		out.SpecialDates = imported.SpecialDates
	}

	res := &AssembleResult{
		Snapshot: out,
		Stats: Stats{
			Counts:         out.Counts(),
			Duplicates:     merged.Duplicates,
			CrossPartition: merged.CrossPartition,
		},
	}

	n := a.Notifier
	if n == nil {
		n = notify.Discard
	}
	n.Notify(res.Stats.Summary(), notify.KindSuccess)
	if merged.CrossPartition > 0 && a.CrossPartition != ArchivedWins {
		n.Notify(fmt.Sprintf("%d visite(s) à la fois planifiée(s) et archivée(s)", merged.CrossPartition), notify.KindWarning)
	}
	for _, c := range dir.Conflicts() {
		n.Notify(c, notify.KindWarning)
	}
	for _, c := range FindKeyCollisions(out.Visits, identity.VisitKey) {
		n.Notify(fmt.Sprintf("%d visites planifiées pour %q", len(c.Indexes), c.Key), notify.KindWarning)
	}
	for _, c := range FindKeyCollisions(out.ArchivedVisits, identity.VisitKey) {
		n.Notify(fmt.Sprintf("%d visites archivées pour %q", len(c.Indexes), c.Key), notify.KindWarning)
	}
	return res, nil
}

func renamedSpeakers(before, after []model.Speaker) map[string]string {
	return renamed(before, after,
		func(s model.Speaker) string { return s.ID },
		identity.SpeakerKey,
		func(s model.Speaker) string { return s.Nom })
}

func renamedHosts(before, after []model.Host) map[string]string {
	return renamed(before, after,
		func(h model.Host) string { return h.ID },
		identity.HostKey,
		func(h model.Host) string { return h.Nom })
}
