package reconcile

import (
	"strings"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
)

// CrossPartitionPolicy decides what happens when the same event is active in
// one snapshot and archived in the other.
type CrossPartitionPolicy string

const (
	// KeepBoth leaves the event in both output partitions and counts it.
	KeepBoth CrossPartitionPolicy = "keep-both"

	// ArchivedWins drops the active copy: a completed visit stays completed.
	ArchivedWins CrossPartitionPolicy = "archived-wins"
)

// ValidCrossPartitionPolicies lists the accepted policies.
var ValidCrossPartitionPolicies = map[CrossPartitionPolicy]bool{
	KeepBoth:     true,
	ArchivedWins: true,
}

// MergeOptions configures MergeVisits.
type MergeOptions struct {
	// IDs supplies a visitId for incoming visits that have none.
	// Defaults to ids.UUIDv7.
	IDs ids.Generator

	// CrossPartition defaults to KeepBoth.
	CrossPartition CrossPartitionPolicy
}

// MergeResult is the outcome of MergeVisits.
type MergeResult struct {
	Active   []model.Visit
	Archived []model.Visit

	// Duplicates counts visits that landed on an occupied bucket slot.
	Duplicates int

	// CrossPartition counts events present in both partitions after the merge
	// (before the policy is applied).
	CrossPartition int
}

type partition int

const (
	active partition = iota
	archived
)

type bucket struct {
	active   *model.Visit
	archived *model.Visit
}

func (b *bucket) slot(p partition) **model.Visit {
	if p == archived {
		return &b.archived
	}
	return &b.active
}

type bucketMerger struct {
	ids        ids.Generator
	order      []string
	buckets    map[string]*bucket
	duplicates int
}

// MergeVisits merges the active and archived visits of two snapshots, keyed
// by identity.VisitKey. Lists are processed in the order current active,
// current archived, incoming active, incoming archived; a visit's partition is
// the list it comes from.
func MergeVisits(currentActive, currentArchived, incomingActive, incomingArchived []model.Visit, opts MergeOptions) MergeResult {
	m := &bucketMerger{
		ids:     opts.IDs,
		buckets: make(map[string]*bucket),
	}
	if m.ids == nil {
		m.ids = ids.UUIDv7{}
	}

	for _, v := range currentActive {
		m.upsert(active, v)
	}
	for _, v := range currentArchived {
		m.upsert(archived, v)
	}
	for _, v := range incomingActive {
		m.upsert(active, v)
	}
	for _, v := range incomingArchived {
		m.upsert(archived, v)
	}

	return m.flatten(opts.CrossPartition)
}

func (m *bucketMerger) upsert(p partition, v model.Visit) {
	key := identity.VisitKey(v)
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{}
		m.buckets[key] = b
		m.order = append(m.order, key)
	}

	slot := b.slot(p)
	if *slot != nil {
		m.duplicates++
		merged := mergeVisit(**slot, v)
		*slot = &merged
		return
	}

	c := v.Clone()
	if strings.TrimSpace(c.VisitID) == "" {
		c.VisitID = m.ids.NewID()
	}
	*slot = &c
}

func (m *bucketMerger) flatten(policy CrossPartitionPolicy) MergeResult {
	res := MergeResult{
		Active:     make([]model.Visit, 0, len(m.order)),
		Archived:   make([]model.Visit, 0, len(m.order)),
		Duplicates: m.duplicates,
	}

	for _, key := range m.order {
		b := m.buckets[key]
		if b.active != nil && b.archived != nil {
			res.CrossPartition++
			if policy == ArchivedWins {
				b.active = nil
			}
		}
		if b.active != nil {
			res.Active = append(res.Active, *b.active)
		}
		if b.archived != nil {
			res.Archived = append(res.Archived, *b.archived)
		}
	}
	return res
}

// mergeVisit overlays incoming onto existing field by field. Non-empty
// incoming values win; empty ones fall back to existing.
func mergeVisit(existing, incoming model.Visit) model.Visit {
	out := existing.Clone()

	overlay(&out.VisitID, incoming.VisitID)
	overlay(&out.SpeakerID, incoming.SpeakerID)
	overlay(&out.Nom, incoming.Nom)
	overlay(&out.Congregation, incoming.Congregation)
	overlay(&out.Telephone, incoming.Telephone)
	overlay(&out.PhotoURL, incoming.PhotoURL)
	overlay(&out.VisitTime, incoming.VisitTime)
	overlay(&out.ArrivalDate, incoming.ArrivalDate)
	overlay(&out.DepartureDate, incoming.DepartureDate)
	overlay(&out.Accommodation, incoming.Accommodation)
	overlay(&out.Meals, incoming.Meals)
	overlay(&out.Notes, incoming.Notes)
	overlay(&out.TalkNoOrType, incoming.TalkNoOrType)
	overlay(&out.TalkTheme, incoming.TalkTheme)

	// Host name and host id travel together: a new host name with no id must
	// not keep the previous host's id.
	if strings.TrimSpace(incoming.Host) != "" {
		out.Host = incoming.Host
		out.HostID = incoming.HostID
	}

	if incoming.Status != "" {
		out.Status = incoming.Status
	}
	if incoming.LocationType != "" {
		out.LocationType = incoming.LocationType
	}

	in := incoming.Clone()
	if len(in.Attachments) > 0 {
		out.Attachments = in.Attachments
	}
	if len(in.Expenses) > 0 {
		out.Expenses = in.Expenses
	}
	if len(in.Checklist) > 0 {
		out.Checklist = in.Checklist
	}
	if in.Feedback != nil {
		out.Feedback = in.Feedback
	}

	out.CommunicationStatus = mergeCommunication(out.CommunicationStatus, in.CommunicationStatus)
	return out
}

func overlay(dst *string, val string) {
	if strings.TrimSpace(val) != "" {
		*dst = val
	}
}

// mergeCommunication merges per message type, then per role; incoming
// timestamps overwrite existing ones.
func mergeCommunication(existing, incoming model.CommunicationStatus) model.CommunicationStatus {
	if len(incoming) == 0 {
		return existing.Clone()
	}
	out := existing.Clone()
	if out == nil {
		out = make(model.CommunicationStatus, len(incoming))
	}
	for msgType, roles := range incoming {
		inner, ok := out[msgType]
		if !ok {
			inner = make(map[string]string, len(roles))
			out[msgType] = inner
		}
		for role, ts := range roles {
			inner[role] = ts
		}
	}
	return out
}
