package dupes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/model"
)

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 100, Similarity("José Martin", "jose-martin"), 0.001)
	assert.InDelta(t, 90, Similarity("jeanmartin", "jeanmartyn"), 0.001)
	assert.InDelta(t, 100, Similarity("", ""), 0.001)
	assert.Less(t, Similarity("Paul", "Marc"), 50.0)
}

func TestFinder_Speakers(t *testing.T) {
	speakers := []model.Speaker{
		{ID: "1", Nom: "Jean Martin", Congregation: "Lyon"},
		{ID: "2", Nom: "Paul Durand", Telephone: "0601"},
		{ID: "3", Nom: "Jean Martyn", Congregation: "Lyon"},
		{ID: "4", Nom: "P. Durand", Telephone: "0601"},
		{ID: "5", Nom: "Luc"},
	}

	groups := Finder{}.Speakers(speakers)

	require.Len(t, groups, 2)
	assert.Equal(t, "2", groups[0].Items[0].ID, "phone match scores 100 and sorts first")
	assert.Equal(t, "4", groups[0].Items[1].ID)
	assert.Equal(t, []string{ReasonSamePhone}, groups[0].Reasons)
	assert.Equal(t, "1", groups[1].Items[0].ID)
	assert.Equal(t, "3", groups[1].Items[1].ID)
	assert.Equal(t, []string{ReasonSimilarName}, groups[1].Reasons)
}

func TestFinder_SpeakersSameNameOtherCongregation(t *testing.T) {
	speakers := []model.Speaker{
		{ID: "1", Nom: "Jean Martin", Congregation: "Lyon"},
		{ID: "2", Nom: "JEAN MARTIN", Congregation: "Bron"},
	}

	groups := Finder{}.Speakers(speakers)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{ReasonSimilarName, ReasonSameNameOtherCong}, groups[0].Reasons)
}

func TestFinder_HostsAddress(t *testing.T) {
	hosts := []model.Host{
		{Nom: "Famille Petit", Address: "3, rue des Lilas"},
		{Nom: "Chez Sophie", Address: "3 rue des lilas"},
	}

	groups := Finder{}.Hosts(hosts)

	require.Len(t, groups, 1)
	assert.InDelta(t, 90, groups[0].Similarity, 0.001)
	assert.Equal(t, []string{ReasonSameAddress}, groups[0].Reasons)
}

func TestFinder_Threshold(t *testing.T) {
	hosts := []model.Host{{Nom: "jeanmartin"}, {Nom: "jeanmartyn"}}

	assert.Len(t, Finder{Threshold: 95}.Hosts(hosts), 0)
	assert.Len(t, Finder{Threshold: 90}.Hosts(hosts), 1)
}

func TestAnalyze(t *testing.T) {
	s := &model.Snapshot{
		Speakers: []model.Speaker{{ID: "1", Nom: "A"}},
		Hosts:    []model.Host{},
		Visits: []model.Visit{
			{Nom: "Jean", VisitDate: "2025-01-01", VisitID: "a"},
			{Nom: "Marc", VisitDate: "2025-01-01", VisitID: "b"},
		},
		ArchivedVisits: []model.Visit{
			{Nom: "JEAN ", VisitDate: "2025-01-01", VisitID: "c"},
		},
	}

	r := Finder{}.Analyze(s)

	require.Len(t, r.Visits, 1)
	assert.Len(t, r.Visits[0].Items, 2)
	assert.Empty(t, r.Speakers)
	assert.Equal(t, []string{"1 visite(s) en doublon détectée(s)"}, r.Suggestions())
}
