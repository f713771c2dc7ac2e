package reconcile

import (
	"fmt"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

// Directory indexes the canonical speakers and hosts that visits are
// rehydrated from.
type Directory struct {
	speakersByID   map[string]model.Speaker
	speakersByName map[string]model.Speaker
	hostsByID      map[string]model.Host
	hostsByName    map[string]model.Host
	hostAliases    map[string]string
	speakerAliases map[string]string
	conflicts      []string
}

// NewDirectory indexes speakers by id and by normalized name, and hosts by id
// and by normalized name. When two records share an id or a name the first
// one is indexed and the clash is listed by Conflicts.
func NewDirectory(speakers []model.Speaker, hosts []model.Host) *Directory {
	d := &Directory{
		speakersByID:   make(map[string]model.Speaker, len(speakers)),
		speakersByName: make(map[string]model.Speaker, len(speakers)),
		hostsByID:      make(map[string]model.Host, len(hosts)),
		hostsByName:    make(map[string]model.Host, len(hosts)),
		hostAliases:    make(map[string]string),
		speakerAliases: make(map[string]string),
	}
	for _, s := range speakers {
		d.conflict(indexFirst(d.speakersByID, s.ID, s), "orateur", "id", s.ID)
		key := identity.SpeakerKey(s)
		d.conflict(indexFirst(d.speakersByName, key, s), "orateur", "nom", s.Nom)
	}
	for _, h := range hosts {
		d.conflict(indexFirst(d.hostsByID, h.ID, h), "contact", "id", h.ID)
		key := identity.HostKey(h)
		d.conflict(indexFirst(d.hostsByName, key, h), "contact", "nom", h.Nom)
	}
	return d
}

// indexFirst stores v under k unless k is empty or taken. It reports
// whether k was taken by another record.
func indexFirst[T any](m map[string]T, k string, v T) bool {
	if k == "" {
		return false
	}
	if _, ok := m[k]; ok {
		return true
	}
	m[k] = v
	return false
}

func (d *Directory) conflict(clash bool, kind, field, value string) {
	if clash {
		d.conflicts = append(d.conflicts, fmt.Sprintf("plusieurs fiches %s partagent le %s %q", kind, field, value))
	}
}

// Conflicts describes the records NewDirectory could not index because an
// earlier record held the same id or name.
func (d *Directory) Conflicts() []string {
	return d.conflicts
}

// WithHostAliases registers renamed or merged host names: a visit whose host
// is an old name is moved to the canonical name. It returns d.
func (d *Directory) WithHostAliases(aliases map[string]string) *Directory {
	for old, canonical := range aliases {
		d.hostAliases[identity.NormalizeName(old)] = canonical
	}
	return d
}

// WithSpeakerAliases registers former speaker names. A visit without a known
// speaker id that still carries an old name resolves to the renamed speaker.
// It returns d.
func (d *Directory) WithSpeakerAliases(aliases map[string]string) *Directory {
	for old, canonical := range aliases {
		d.speakerAliases[identity.NormalizeName(old)] = identity.NormalizeName(canonical)
	}
	return d
}

// Speaker resolves a speaker by id, then by normalized name, then by former
// name.
func (d *Directory) Speaker(id, name string) (model.Speaker, bool) {
	if id != "" {
		if s, ok := d.speakersByID[id]; ok {
			return s, true
		}
	}
	key := identity.NormalizeName(name)
	if s, ok := d.speakersByName[key]; ok {
		return s, true
	}
	if alias, ok := d.speakerAliases[key]; ok {
		s, ok := d.speakersByName[alias]
		return s, ok
	}
	return model.Speaker{}, false
}

// Host resolves a host by id, then by normalized name.
func (d *Directory) Host(id, name string) (model.Host, bool) {
	if id != "" {
		if h, ok := d.hostsByID[id]; ok {
			return h, true
		}
	}
	h, ok := d.hostsByName[identity.NormalizeName(name)]
	return h, ok
}

// Rehydrate returns copies of visits whose denormalized speaker and host
// fields match the canonical records in dir. Visits referencing an unknown
// speaker or host keep their last-known values.
func Rehydrate(visits []model.Visit, dir *Directory) []model.Visit {
	out := make([]model.Visit, len(visits))
	for i, v := range visits {
		out[i] = dir.rehydrate(v)
	}
	return out
}

func (d *Directory) rehydrate(v model.Visit) model.Visit {
	v = v.Clone()

	if s, ok := d.Speaker(v.SpeakerID, v.Nom); ok {
		v.SpeakerID = s.ID
		v.Nom = s.Nom
		v.Congregation = s.Congregation
		v.Telephone = s.Telephone
		v.PhotoURL = s.PhotoURL
	}

	if v.Host == "" || model.IsHostSentinel(v.Host) {
		return v
	}
	if canonical, ok := d.hostAliases[identity.NormalizeName(v.Host)]; ok {
		v.Host = canonical
		v.HostID = ""
	}
	if h, ok := d.Host(v.HostID, v.Host); ok {
		v.Host = h.Nom
		v.HostID = h.ID
	}
	return v
}
