package model

// Snapshot is the complete application data at one instant.
//
// The optional collections distinguish "absent" (nil) from "present but
// empty" so that an import only overrides what the imported file carries.
type Snapshot struct {
	Speakers                   []Speaker                  `json:"speakers"`
	Visits                     []Visit                    `json:"visits"`
	Hosts                      []Host                     `json:"hosts"`
	ArchivedVisits             []Visit                    `json:"archivedVisits"`
	CustomTemplates            CustomTemplates            `json:"customTemplates,omitempty"`
	CustomHostRequestTemplates CustomHostRequestTemplates `json:"customHostRequestTemplates,omitempty"`
	CongregationProfile        *CongregationProfile       `json:"congregationProfile,omitempty"`
	PublicTalks                []Talk                     `json:"publicTalks,omitempty"`
	SavedViews                 []SavedView                `json:"savedViews,omitempty"`
	SpecialDates               []SpecialDate              `json:"specialDates,omitempty"`
}

// Empty returns a snapshot with every required collection present and empty.
func Empty() *Snapshot {
	return &Snapshot{
		Speakers:       []Speaker{},
		Visits:         []Visit{},
		Hosts:          []Host{},
		ArchivedVisits: []Visit{},
	}
}

// Copy returns a shallow copy. Collections are shared with s; callers that
// change a collection must replace it, never mutate it in place.
func (s *Snapshot) Copy() *Snapshot {
	if s == nil {
		return Empty()
	}
	out := *s
	return &out
}

// Counts summarizes the size of a snapshot.
type Counts struct {
	Speakers int `json:"speakers"`
	Hosts    int `json:"hosts"`
	Visits   int `json:"visits"`
	Archived int `json:"archived"`
	Talks    int `json:"talks"`
}

// Counts returns the collection sizes of s.
func (s *Snapshot) Counts() Counts {
	if s == nil {
		return Counts{}
	}
	return Counts{
		Speakers: len(s.Speakers),
		Hosts:    len(s.Hosts),
		Visits:   len(s.Visits),
		Archived: len(s.ArchivedVisits),
		Talks:    len(s.PublicTalks),
	}
}

// FindSpeaker returns the speaker with the given id.
func (s *Snapshot) FindSpeaker(id string) (Speaker, bool) {
	for _, sp := range s.Speakers {
		if sp.ID == id {
			return sp, true
		}
	}
	return Speaker{}, false
}
