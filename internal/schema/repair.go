package schema

import (
	"fmt"
	"strings"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// RepairOptions configures Repair.
type RepairOptions struct {
	// IDs assigns missing speaker and host ids. Defaults to ids.UUIDv7.
	IDs ids.Generator
}

// Repair drops records that cannot be identified, trims names and assigns
// missing speaker and host ids. Visit fields are left as imported: an empty
// visit field must still fall back to the existing value during the merge.
// It returns a new snapshot; s is not modified.
func Repair(s *model.Snapshot, opts RepairOptions) (*model.Snapshot, []Warning) {
	if opts.IDs == nil {
		opts.IDs = ids.UUIDv7{}
	}
	r := &repairer{opts: opts}

	out := s.Copy()
	out.Speakers = r.speakers(s.Speakers)
	out.Hosts = r.hosts(s.Hosts)
	out.Visits = r.visits("visite", s.Visits)
	if s.ArchivedVisits != nil {
		out.ArchivedVisits = r.visits("visite archivée", s.ArchivedVisits)
	}

	r.duplicates("orateurs", reconcile.FindKeyCollisions(out.Speakers, identity.SpeakerKey))
	r.duplicates("contacts", reconcile.FindKeyCollisions(out.Hosts, identity.HostKey))
	r.duplicates("visites", reconcile.FindKeyCollisions(out.Visits, identity.VisitKey))
	r.duplicates("visites archivées", reconcile.FindKeyCollisions(out.ArchivedVisits, identity.VisitKey))

	return out, r.warnings
}

type repairer struct {
	opts     RepairOptions
	warnings []Warning
}

func (r *repairer) warn(code, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

func (r *repairer) speakers(in []model.Speaker) []model.Speaker {
	out := make([]model.Speaker, 0, len(in))
	for i, sp := range in {
		sp.Nom = strings.TrimSpace(sp.Nom)
		if sp.Nom == "" {
			r.warn(WarnDroppedSpeaker, "orateur %d : nom manquant ou invalide", i+1)
			continue
		}
		if strings.TrimSpace(sp.ID) == "" {
			sp.ID = r.opts.IDs.NewID()
		}
		if strings.TrimSpace(sp.Congregation) == "" {
			sp.Congregation = model.DefaultCongregation
		}
		if sp.TalkHistory == nil {
			sp.TalkHistory = []model.TalkHistory{}
		}
		out = append(out, sp)
	}
	return out
}

func (r *repairer) hosts(in []model.Host) []model.Host {
	out := make([]model.Host, 0, len(in))
	for i, h := range in {
		h.Nom = strings.TrimSpace(h.Nom)
		if h.Nom == "" {
			r.warn(WarnDroppedHost, "contact %d : nom manquant ou invalide", i+1)
			continue
		}
		if strings.TrimSpace(h.ID) == "" {
			h.ID = r.opts.IDs.NewID()
		}
		out = append(out, h)
	}
	return out
}

func (r *repairer) visits(label string, in []model.Visit) []model.Visit {
	out := make([]model.Visit, 0, len(in))
	for i, v := range in {
		if strings.TrimSpace(v.Nom) == "" || strings.TrimSpace(v.VisitDate) == "" {
			r.warn(WarnDroppedVisit, "%s %d : données essentielles manquantes", label, i+1)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r *repairer) duplicates(label string, collisions []reconcile.KeyCollision) {
	for _, c := range collisions {
		r.warn(WarnDuplicateKey, "%s : %d entrées pour %q, la dernière sera conservée", label, len(c.Indexes), c.Key)
	}
}
