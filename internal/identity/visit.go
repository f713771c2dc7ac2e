package identity

import "github.com/kbvlyon/visitsync/internal/model"

// VisitKey returns the composite natural key of v. Two visits with the same
// key are the same scheduled event whatever their visitId, time or host.
func VisitKey(v model.Visit) string {
	return CompositeKey(v.Nom, v.VisitDate)
}

// SpeakerKey returns the unification key of a speaker.
func SpeakerKey(s model.Speaker) string {
	return NormalizeName(s.Nom)
}

// HostKey returns the unification key of a host.
func HostKey(h model.Host) string {
	return NormalizeName(h.Nom)
}
