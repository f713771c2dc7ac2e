// Package testutil provides fixtures shared by package tests.
package testutil

import "github.com/kbvlyon/visitsync/internal/model"

// VisitOption customizes a fixture visit.
type VisitOption func(*model.Visit)

// Speaker returns a speaker fixture.
func Speaker(id, nom, congregation string) model.Speaker {
	return model.Speaker{
		ID:           id,
		Nom:          nom,
		Congregation: congregation,
		TalkHistory:  []model.TalkHistory{},
	}
}

// Host returns a host fixture.
func Host(id, nom, telephone string) model.Host {
	return model.Host{ID: id, Nom: nom, Telephone: telephone}
}

// Visit returns a pending physical visit fixture for nom on date.
func Visit(nom, date string, opts ...VisitOption) model.Visit {
	v := model.Visit{
		Nom:          nom,
		VisitDate:    date,
		VisitTime:    "14:30",
		Host:         model.UnassignedHost,
		Status:       model.StatusPending,
		LocationType: model.LocationPhysical,
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// WithVisitID sets the visit id.
func WithVisitID(id string) VisitOption {
	return func(v *model.Visit) { v.VisitID = id }
}

// WithSpeaker links the visit to a speaker.
func WithSpeaker(sp model.Speaker) VisitOption {
	return func(v *model.Visit) {
		v.SpeakerID = sp.ID
		v.Nom = sp.Nom
		v.Congregation = sp.Congregation
		v.Telephone = sp.Telephone
		v.PhotoURL = sp.PhotoURL
	}
}

// WithHost assigns a host by name and id.
func WithHost(nom, id string) VisitOption {
	return func(v *model.Visit) {
		v.Host = nom
		v.HostID = id
	}
}

// WithStatus sets the visit status.
func WithStatus(s model.VisitStatus) VisitOption {
	return func(v *model.Visit) { v.Status = s }
}

// WithTalk sets the talk number and theme.
func WithTalk(no, theme string) VisitOption {
	return func(v *model.Visit) {
		v.TalkNoOrType = no
		v.TalkTheme = theme
	}
}

// WithCommunication records a timestamp for a message type and role.
func WithCommunication(msgType, role, at string) VisitOption {
	return func(v *model.Visit) {
		if v.CommunicationStatus == nil {
			v.CommunicationStatus = model.CommunicationStatus{}
		}
		if v.CommunicationStatus[msgType] == nil {
			v.CommunicationStatus[msgType] = map[string]string{}
		}
		v.CommunicationStatus[msgType][role] = at
	}
}

// Snapshot returns a snapshot holding the given collections. Nil arguments
// become empty lists so the result is a valid import.
func Snapshot(speakers []model.Speaker, hosts []model.Host, visits, archived []model.Visit) *model.Snapshot {
	s := model.Empty()
	if speakers != nil {
		s.Speakers = speakers
	}
	if hosts != nil {
		s.Hosts = hosts
	}
	if visits != nil {
		s.Visits = visits
	}
	if archived != nil {
		s.ArchivedVisits = archived
	}
	return s
}
