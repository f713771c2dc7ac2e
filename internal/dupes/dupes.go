// Package dupes finds probable duplicate speakers, hosts and visits so that
// they can be merged by hand.
package dupes

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

// DefaultThreshold is the minimum name similarity, in percent, for two
// records to be reported.
const DefaultThreshold = 85

// Reasons a pair of records was grouped.
const (
	ReasonSimilarName        = "similar-name"
	ReasonSameNameOtherCong  = "same-name-other-congregation"
	ReasonSamePhone          = "same-phone"
	ReasonSamePhoto          = "same-photo"
	ReasonSameAddress        = "same-address"
	ReasonSameSpeakerAndDate = "same-speaker-and-date"
)

// Group is a set of records that probably describe the same thing.
// The first item is the one the others were compared with.
type Group[T any] struct {
	Items      []T      `json:"items"`
	Similarity float64  `json:"similarity"`
	Reasons    []string `json:"reasons"`
}

// Similarity returns how alike a and b are, from 0 to 100, after reducing
// both to lower-case letters and digits.
func Similarity(a, b string) float64 {
	a, b = identity.CompactName(a), identity.CompactName(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return float64(longest-d) / float64(longest) * 100
}

// Finder groups probable duplicates.
type Finder struct {
	// Threshold defaults to DefaultThreshold.
	Threshold float64
}

func (f Finder) threshold() float64 {
	if f.Threshold <= 0 {
		return DefaultThreshold
	}
	return f.Threshold
}

type match struct {
	score   float64
	reasons []string
}

func (m *match) add(reason string, score float64) {
	m.reasons = append(m.reasons, reason)
	m.score = math.Max(m.score, score)
}

// Speakers groups speakers with similar names, the same phone or the same photo.
func (f Finder) Speakers(speakers []model.Speaker) []Group[model.Speaker] {
	return cluster(speakers, func(a, b model.Speaker) match {
		var m match
		if sim := Similarity(a.Nom, b.Nom); sim >= f.threshold() {
			m.add(ReasonSimilarName, sim)
		}
		if identity.SameName(a.Nom, b.Nom) && a.Congregation != b.Congregation {
			m.add(ReasonSameNameOtherCong, 100)
		}
		if a.Telephone != "" && a.Telephone == b.Telephone {
			m.add(ReasonSamePhone, 100)
		}
		if a.PhotoURL != "" && a.PhotoURL == b.PhotoURL {
			m.add(ReasonSamePhoto, 100)
		}
		return m
	})
}

// Hosts groups hosts with similar names, the same phone, address or photo.
func (f Finder) Hosts(hosts []model.Host) []Group[model.Host] {
	return cluster(hosts, func(a, b model.Host) match {
		var m match
		if sim := Similarity(a.Nom, b.Nom); sim >= f.threshold() {
			m.add(ReasonSimilarName, sim)
		}
		if a.Telephone != "" && a.Telephone == b.Telephone {
			m.add(ReasonSamePhone, 100)
		}
		if a.Address != "" && b.Address != "" && identity.CompactName(a.Address) == identity.CompactName(b.Address) {
			m.add(ReasonSameAddress, 90)
		}
		if a.PhotoURL != "" && a.PhotoURL == b.PhotoURL {
			m.add(ReasonSamePhoto, 100)
		}
		return m
	})
}

// Visits groups visits sharing a composite key.
func (f Finder) Visits(visits []model.Visit) []Group[model.Visit] {
	byKey := make(map[string][]model.Visit)
	var order []string
	for _, v := range visits {
		k := identity.VisitKey(v)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], v)
	}

	var out []Group[model.Visit]
	for _, k := range order {
		if len(byKey[k]) > 1 {
			out = append(out, Group[model.Visit]{
				Items:      byKey[k],
				Similarity: 100,
				Reasons:    []string{ReasonSameSpeakerAndDate},
			})
		}
	}
	return out
}

// cluster compares every unassigned record with the later ones and groups
// the matches, highest similarity first.
func cluster[T any](items []T, compare func(a, b T) match) []Group[T] {
	taken := make([]bool, len(items))
	var out []Group[T]
	for i := range items {
		if taken[i] {
			continue
		}
		taken[i] = true
		g := Group[T]{Items: []T{items[i]}}
		for j := i + 1; j < len(items); j++ {
			if taken[j] {
				continue
			}
			m := compare(items[i], items[j])
			if len(m.reasons) == 0 {
				continue
			}
			taken[j] = true
			g.Items = append(g.Items, items[j])
			g.Similarity = math.Max(g.Similarity, m.score)
			g.Reasons = appendUnique(g.Reasons, m.reasons...)
		}
		if len(g.Items) > 1 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, existing := range list {
			if existing == it {
				found = true
				break
			}
		}
		if !found {
			list = append(list, it)
		}
	}
	return list
}

// Report is a full duplicate analysis of a snapshot.
type Report struct {
	Speakers []Group[model.Speaker] `json:"speakers"`
	Hosts    []Group[model.Host]    `json:"hosts"`
	Visits   []Group[model.Visit]   `json:"visits"`
}

// Analyze runs every finder on s. Active and archived visits are checked together.
func (f Finder) Analyze(s *model.Snapshot) Report {
	all := make([]model.Visit, 0, len(s.Visits)+len(s.ArchivedVisits))
	all = append(all, s.Visits...)
	all = append(all, s.ArchivedVisits...)
	return Report{
		Speakers: f.Speakers(s.Speakers),
		Hosts:    f.Hosts(s.Hosts),
		Visits:   f.Visits(all),
	}
}

// Extra counts the records that would disappear if every group were merged.
func extra[T any](groups []Group[T]) int {
	n := 0
	for _, g := range groups {
		n += len(g.Items) - 1
	}
	return n
}

// Suggestions lists one line per kind of duplicate found.
func (r Report) Suggestions() []string {
	var out []string
	if n := extra(r.Speakers); n > 0 {
		out = append(out, fmt.Sprintf("%d orateur(s) en doublon détecté(s)", n))
	}
	if n := extra(r.Hosts); n > 0 {
		out = append(out, fmt.Sprintf("%d contact(s) d'accueil en doublon détecté(s)", n))
	}
	if n := extra(r.Visits); n > 0 {
		out = append(out, fmt.Sprintf("%d visite(s) en doublon détectée(s)", n))
	}
	return out
}
