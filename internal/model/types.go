package model

import "encoding/json"

// Host sentinel values. A visit carrying one of these has no host record.
const (
	UnassignedHost = "À définir"
	NoHostNeeded   = "Pas nécessaire"
)

// DefaultCongregation is used when an imported record has no congregation.
const DefaultCongregation = "À définir"

// IsHostSentinel reports whether host is one of the reserved host values.
func IsHostSentinel(host string) bool {
	return host == UnassignedHost || host == NoHostNeeded
}

// VisitStatus is the lifecycle state of a visit.
type VisitStatus string

const (
	StatusPending   VisitStatus = "pending"
	StatusConfirmed VisitStatus = "confirmed"
	StatusCancelled VisitStatus = "cancelled"
	StatusCompleted VisitStatus = "completed"
)

// ValidStatuses lists the accepted visit statuses.
var ValidStatuses = map[VisitStatus]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
}

// LocationType says where the talk is given.
type LocationType string

const (
	LocationPhysical  LocationType = "physical"
	LocationZoom      LocationType = "zoom"
	LocationStreaming LocationType = "streaming"
)

// TalkHistory is one past talk given by a speaker.
type TalkHistory struct {
	Date   string `json:"date"`
	TalkNo string `json:"talkNo,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

// Speaker is a visiting speaker. ID is stable across renames.
type Speaker struct {
	ID           string        `json:"id"`
	Nom          string        `json:"nom"`
	Congregation string        `json:"congregation"`
	Telephone    string        `json:"telephone,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	PhotoURL     string        `json:"photoUrl,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	IsVehiculed  bool          `json:"isVehiculed,omitempty"`
	TalkHistory  []TalkHistory `json:"talkHistory"`
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Host is a brother or sister offering hospitality.
//
// Older snapshot files identify hosts by Nom only. ID is assigned on import
// when missing and is what visits link to through Visit.HostID.
type Host struct {
	ID               string      `json:"id,omitempty"`
	Nom              string      `json:"nom"`
	Telephone        string      `json:"telephone"`
	Gender           string      `json:"gender,omitempty"`
	Address          string      `json:"address,omitempty"`
	PhotoURL         string      `json:"photoUrl,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	Unavailabilities []DateRange `json:"unavailabilities,omitempty"`
}

// CommunicationStatus records, per message type and per role, the timestamp of
// the last message sent.
type CommunicationStatus map[string]map[string]string

// Clone returns a deep copy.
func (c CommunicationStatus) Clone() CommunicationStatus {
	if c == nil {
		return nil
	}
	out := make(CommunicationStatus, len(c))
	for msgType, roles := range c {
		inner := make(map[string]string, len(roles))
		for role, ts := range roles {
			inner[role] = ts
		}
		out[msgType] = inner
	}
	return out
}

// ChecklistItem is one preparation task for a visit.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Attachment is a file attached to a visit.
type Attachment struct {
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
	Size    int64  `json:"size"`
}

// Feedback is the post-visit evaluation.
type Feedback struct {
	Rating  int      `json:"rating"`
	Tags    []string `json:"tags"`
	Comment string   `json:"comment"`
	Date    string   `json:"date"`
}

// Visit is one scheduled talk.
//
// SpeakerID, Nom, Congregation, Telephone and PhotoURL are copied from the
// Speaker when the visit is assigned. The JSON key of SpeakerID is "id" for
// compatibility with existing export files; VisitID is the visit's own identity.
type Visit struct {
	SpeakerID           string              `json:"id"`
	Nom                 string              `json:"nom"`
	Congregation        string              `json:"congregation"`
	Telephone           string              `json:"telephone,omitempty"`
	PhotoURL            string              `json:"photoUrl,omitempty"`
	VisitID             string              `json:"visitId"`
	VisitDate           string              `json:"visitDate"`
	VisitTime           string              `json:"visitTime"`
	ArrivalDate         string              `json:"arrivalDate,omitempty"`
	DepartureDate       string              `json:"departureDate,omitempty"`
	Host                string              `json:"host"`
	HostID              string              `json:"hostId,omitempty"`
	Accommodation       string              `json:"accommodation"`
	Meals               string              `json:"meals"`
	Notes               string              `json:"notes,omitempty"`
	Status              VisitStatus         `json:"status"`
	LocationType        LocationType        `json:"locationType"`
	TalkNoOrType        string              `json:"talkNoOrType,omitempty"`
	TalkTheme           string              `json:"talkTheme,omitempty"`
	Attachments         []Attachment        `json:"attachments,omitempty"`
	Expenses            []json.RawMessage   `json:"expenses,omitempty"`
	CommunicationStatus CommunicationStatus `json:"communicationStatus"`
	Checklist           []ChecklistItem     `json:"checklist,omitempty"`
	Feedback            *Feedback           `json:"feedback,omitempty"`
}

// Clone returns a deep copy of the visit.
func (v Visit) Clone() Visit {
	out := v
	out.Attachments = append([]Attachment(nil), v.Attachments...)
	out.Expenses = append([]json.RawMessage(nil), v.Expenses...)
	out.Checklist = append([]ChecklistItem(nil), v.Checklist...)
	out.CommunicationStatus = v.CommunicationStatus.Clone()
	if v.Feedback != nil {
		fb := *v.Feedback
		fb.Tags = append([]string(nil), v.Feedback.Tags...)
		out.Feedback = &fb
	}
	return out
}

// CongregationProfile describes the receiving congregation.
type CongregationProfile struct {
	Name                     string   `json:"name"`
	Subtitle                 string   `json:"subtitle,omitempty"`
	DefaultTime              string   `json:"defaultTime,omitempty"`
	HospitalityOverseer      string   `json:"hospitalityOverseer,omitempty"`
	HospitalityOverseerPhone string   `json:"hospitalityOverseerPhone,omitempty"`
	BackupPhoneNumber        string   `json:"backupPhoneNumber,omitempty"`
	Latitude                 *float64 `json:"latitude"`
	Longitude                *float64 `json:"longitude"`
	City                     string   `json:"city,omitempty"`
}

// SavedView is a named set of list filters. Filters are kept opaque.
type SavedView struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

// SpecialDate marks a date with no regular visit (assembly, memorial, ...).
type SpecialDate struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	EndDate     string `json:"endDate,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// CustomTemplates maps language → message type → role → template text.
type CustomTemplates map[string]map[string]map[string]string

// CustomHostRequestTemplates maps language → template text.
type CustomHostRequestTemplates map[string]string
