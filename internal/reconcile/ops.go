package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

// Reducer derives a new snapshot from s. Reducers never modify s; on error
// the returned snapshot is nil.
type Reducer func(s *model.Snapshot) (*model.Snapshot, error)

// Message types and roles with special meaning for LogCommunication.
const (
	MessagePreparation = "preparation"
	RoleHost           = "host"
)

// UpdateSpeaker replaces the speaker with the same id and refreshes the
// denormalized speaker fields of every visit.
func UpdateSpeaker(sp model.Speaker) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		idx := speakerIndex(s.Speakers, sp.ID)
		if idx < 0 {
			return nil, notFound("speaker", sp.ID)
		}
		for i, other := range s.Speakers {
			if i != idx && identity.SameName(other.Nom, sp.Nom) {
				return nil, alreadyExists("speaker", sp.Nom)
			}
		}

		out := s.Copy()
		out.Speakers = append([]model.Speaker(nil), s.Speakers...)
		out.Speakers[idx] = sp
		rehydrateAll(out, nil)
		return out, nil
	}
}

// DeleteSpeaker removes a speaker and its scheduled visits. Archived visits
// are history and are kept.
func DeleteSpeaker(id string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		if speakerIndex(s.Speakers, id) < 0 {
			return nil, notFound("speaker", id)
		}
		out := s.Copy()
		out.Speakers = filter(s.Speakers, func(sp model.Speaker) bool { return sp.ID != id })
		out.Visits = filter(s.Visits, func(v model.Visit) bool { return v.SpeakerID != id })
		return out, nil
	}
}

// MergeSpeakers folds the duplicates into the primary speaker: visits are
// moved to the primary, tags and talk histories are unioned and the
// duplicates are removed.
func MergeSpeakers(primaryID string, duplicateIDs []string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		pi := speakerIndex(s.Speakers, primaryID)
		if pi < 0 {
			return nil, notFound("speaker", primaryID)
		}
		dups := make(map[string]bool, len(duplicateIDs))
		for _, id := range duplicateIDs {
			if id == primaryID {
				continue
			}
			if speakerIndex(s.Speakers, id) < 0 {
				return nil, notFound("speaker", id)
			}
			dups[id] = true
		}

		primary := s.Speakers[pi]
		primary.Tags = append([]string(nil), primary.Tags...)
		primary.TalkHistory = append([]model.TalkHistory(nil), primary.TalkHistory...)
		for _, sp := range s.Speakers {
			if dups[sp.ID] {
				primary.Tags = unionStrings(primary.Tags, sp.Tags)
				primary.TalkHistory = append(primary.TalkHistory, sp.TalkHistory...)
			}
		}
		primary.TalkHistory = normalizeHistory(primary.TalkHistory)

		out := s.Copy()
		out.Speakers = make([]model.Speaker, 0, len(s.Speakers)-len(dups))
		for _, sp := range s.Speakers {
			switch {
			case sp.ID == primaryID:
				out.Speakers = append(out.Speakers, primary)
			case !dups[sp.ID]:
				out.Speakers = append(out.Speakers, sp)
			}
		}

		repoint := func(v model.Visit) model.Visit {
			if dups[v.SpeakerID] {
				v.SpeakerID = primaryID
			}
			return v
		}
		out.Visits = mapVisits(s.Visits, repoint)
		out.ArchivedVisits = mapVisits(s.ArchivedVisits, repoint)
		rehydrateAll(out, nil)
		return out, nil
	}
}

// RenameHost renames a host and moves its visits to the new name.
func RenameHost(oldName, newName string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		idx := hostIndex(s.Hosts, oldName)
		if idx < 0 {
			return nil, notFound("host", oldName)
		}
		if other := hostIndex(s.Hosts, newName); other >= 0 && other != idx {
			return nil, alreadyExists("host", newName)
		}

		out := s.Copy()
		out.Hosts = append([]model.Host(nil), s.Hosts...)
		out.Hosts[idx].Nom = newName
		rehydrateAll(out, map[string]string{oldName: newName})
		return out, nil
	}
}

// MergeHosts folds the duplicate hosts into the primary one. Tags are
// unioned and visits naming a duplicate are moved to the primary.
func MergeHosts(primaryName string, duplicateNames []string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		pi := hostIndex(s.Hosts, primaryName)
		if pi < 0 {
			return nil, notFound("host", primaryName)
		}
		primary := s.Hosts[pi]

		dupIdx := make(map[int]bool, len(duplicateNames))
		dupIDs := make(map[string]bool, len(duplicateNames))
		aliases := make(map[string]string, len(duplicateNames))
		for _, name := range duplicateNames {
			i := hostIndex(s.Hosts, name)
			if i < 0 {
				return nil, notFound("host", name)
			}
			if i == pi {
				continue
			}
			dupIdx[i] = true
			if id := s.Hosts[i].ID; id != "" {
				dupIDs[id] = true
			}
			aliases[s.Hosts[i].Nom] = primary.Nom
		}

		primary.Tags = append([]string(nil), primary.Tags...)
		for i := range dupIdx {
			primary.Tags = unionStrings(primary.Tags, s.Hosts[i].Tags)
		}
		sort.Strings(primary.Tags)

		out := s.Copy()
		out.Hosts = make([]model.Host, 0, len(s.Hosts)-len(dupIdx))
		for i, h := range s.Hosts {
			switch {
			case i == pi:
				out.Hosts = append(out.Hosts, primary)
			case !dupIdx[i]:
				out.Hosts = append(out.Hosts, h)
			}
		}

		repoint := func(v model.Visit) model.Visit {
			if v.HostID != "" && dupIDs[v.HostID] {
				v.Host = primary.Nom
				v.HostID = primary.ID
			}
			return v
		}
		out.Visits = mapVisits(s.Visits, repoint)
		out.ArchivedVisits = mapVisits(s.ArchivedVisits, repoint)
		rehydrateAll(out, aliases)
		return out, nil
	}
}

// DeleteHost removes a host. Scheduled visits it was hosting fall back to
// model.UnassignedHost.
func DeleteHost(name string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		idx := hostIndex(s.Hosts, name)
		if idx < 0 {
			return nil, notFound("host", name)
		}
		h := s.Hosts[idx]

		out := s.Copy()
		out.Hosts = append(append([]model.Host(nil), s.Hosts[:idx]...), s.Hosts[idx+1:]...)
		out.Visits = mapVisits(s.Visits, func(v model.Visit) model.Visit {
			if hostedBy(v, h) {
				v.Host = model.UnassignedHost
				v.HostID = ""
			}
			return v
		})
		return out, nil
	}
}

// CompleteVisit moves a scheduled visit to the archive and records the talk
// in the speaker's history.
func CompleteVisit(visitID string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		for _, v := range s.ArchivedVisits {
			if v.VisitID == visitID {
				return nil, &Error{
					Code:    ErrCodeAlreadyArchived,
					Message: "visit " + visitID + " is already archived",
					Details: map[string]string{"visitId": visitID},
				}
			}
		}
		idx := -1
		for i, v := range s.Visits {
			if v.VisitID == visitID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, notFound("visit", visitID)
		}

		done := s.Visits[idx].Clone()
		done.Status = model.StatusCompleted

		out := s.Copy()
		out.Visits = append(append([]model.Visit(nil), s.Visits[:idx]...), s.Visits[idx+1:]...)
		out.ArchivedVisits = append([]model.Visit{done}, s.ArchivedVisits...)

		if si := speakerIndex(s.Speakers, done.SpeakerID); si >= 0 {
			out.Speakers = append([]model.Speaker(nil), s.Speakers...)
			sp := out.Speakers[si]
			history := append([]model.TalkHistory(nil), sp.TalkHistory...)
			history = append(history, model.TalkHistory{
				Date:   done.VisitDate,
				TalkNo: done.TalkNoOrType,
				Theme:  done.TalkTheme,
			})
			sp.TalkHistory = normalizeHistory(history)
			out.Speakers[si] = sp
		}
		return out, nil
	}
}

// DedupeArchive keeps the first archived visit of each visitId and sorts the
// archive newest first. It returns the number of visits removed.
func DedupeArchive(s *model.Snapshot) (*model.Snapshot, int) {
	seen := make(map[string]bool, len(s.ArchivedVisits))
	kept := make([]model.Visit, 0, len(s.ArchivedVisits))
	for _, v := range s.ArchivedVisits {
		if seen[v.VisitID] {
			continue
		}
		seen[v.VisitID] = true
		kept = append(kept, v)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].VisitDate > kept[j].VisitDate })

	out := s.Copy()
	out.ArchivedVisits = kept
	return out, len(s.ArchivedVisits) - len(kept)
}

// AddTalk adds a talk to the catalogue.
func AddTalk(t model.Talk) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		if talkIndex(s.PublicTalks, t.Number.String()) >= 0 {
			return nil, alreadyExists("talk", t.Number.String())
		}
		out := s.Copy()
		out.PublicTalks = SortTalks(append(append([]model.Talk(nil), s.PublicTalks...), t))
		return out, nil
	}
}

// DeleteTalk removes a talk that no visit references.
func DeleteTalk(number string) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		idx := talkIndex(s.PublicTalks, number)
		if idx < 0 {
			return nil, notFound("talk", number)
		}
		for _, list := range [][]model.Visit{s.Visits, s.ArchivedVisits} {
			for _, v := range list {
				if v.TalkNoOrType == number {
					return nil, &Error{
						Code:    ErrCodeTalkInUse,
						Message: "talk " + number + " is assigned to a visit",
						Details: map[string]string{"talk": number, "visitId": v.VisitID},
					}
				}
			}
		}
		out := s.Copy()
		out.PublicTalks = append(append([]model.Talk(nil), s.PublicTalks[:idx]...), s.PublicTalks[idx+1:]...)
		return out, nil
	}
}

// LogCommunication records that a message was sent for a scheduled visit.
// Logging the host preparation message confirms a pending visit.
func LogCommunication(visitID, messageType, role string, at time.Time) Reducer {
	return func(s *model.Snapshot) (*model.Snapshot, error) {
		idx := -1
		for i, v := range s.Visits {
			if v.VisitID == visitID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, notFound("visit", visitID)
		}

		v := s.Visits[idx].Clone()
		v.CommunicationStatus = mergeCommunication(v.CommunicationStatus, model.CommunicationStatus{
			messageType: {role: at.UTC().Format(time.RFC3339Nano)},
		})
		if messageType == MessagePreparation && role == RoleHost && v.Status == model.StatusPending {
			v.Status = model.StatusConfirmed
		}

		out := s.Copy()
		out.Visits = append([]model.Visit(nil), s.Visits...)
		out.Visits[idx] = v
		return out, nil
	}
}

func alreadyExists(kind, ref string) *Error {
	return &Error{
		Code:    ErrCodeAlreadyExists,
		Message: kind + " " + ref + " already exists",
		Details: map[string]string{"kind": kind, "ref": ref},
	}
}

func rehydrateAll(s *model.Snapshot, hostAliases map[string]string) {
	dir := NewDirectory(s.Speakers, s.Hosts).WithHostAliases(hostAliases)
	s.Visits = Rehydrate(s.Visits, dir)
	s.ArchivedVisits = Rehydrate(s.ArchivedVisits, dir)
}

func speakerIndex(speakers []model.Speaker, id string) int {
	for i, sp := range speakers {
		if sp.ID == id {
			return i
		}
	}
	return -1
}

// hostIndex finds a host by normalized name, or by id.
func hostIndex(hosts []model.Host, ref string) int {
	for i, h := range hosts {
		if identity.SameName(h.Nom, ref) {
			return i
		}
	}
	for i, h := range hosts {
		if h.ID != "" && h.ID == ref {
			return i
		}
	}
	return -1
}

func talkIndex(talks []model.Talk, number string) int {
	for i, t := range talks {
		if t.Number.String() == number {
			return i
		}
	}
	return -1
}

func hostedBy(v model.Visit, h model.Host) bool {
	if model.IsHostSentinel(v.Host) {
		return false
	}
	if v.HostID != "" && h.ID != "" {
		return v.HostID == h.ID
	}
	return identity.SameName(v.Host, h.Nom)
}

func mapVisits(visits []model.Visit, fn func(model.Visit) model.Visit) []model.Visit {
	if visits == nil {
		return nil
	}
	out := make([]model.Visit, len(visits))
	for i, v := range visits {
		out[i] = fn(v.Clone())
	}
	return out
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			k := strings.TrimSpace(s)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// normalizeHistory keeps one entry per date, the first one seen, newest first.
func normalizeHistory(history []model.TalkHistory) []model.TalkHistory {
	seen := make(map[string]bool, len(history))
	out := make([]model.TalkHistory, 0, len(history))
	for _, h := range history {
		if seen[h.Date] {
			continue
		}
		seen[h.Date] = true
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
