package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/model"
)

func TestMergeTalks_ImportedOverwritesInPlace(t *testing.T) {
	current := []model.Talk{
		{Number: model.NumberedTalk(1), Theme: "Ancien"},
		{Number: model.NumberedTalk(2), Theme: "Deux"},
	}
	incoming := []model.Talk{
		{Number: model.NumberedTalk(1), Theme: "Nouveau"},
		{Number: model.CodedTalk("CO"), Theme: "Visite du responsable"},
	}

	got := MergeTalks(current, incoming)

	require.Len(t, got, 3)
	assert.Equal(t, "Nouveau", got[0].Theme)
	assert.Equal(t, "Deux", got[1].Theme)
	assert.Equal(t, "CO", got[2].Number.String())
}

func TestMergeTalks_AbsentIncomingKeepsCurrent(t *testing.T) {
	current := []model.Talk{{Number: model.NumberedTalk(5), Theme: "Cinq"}}
	assert.Equal(t, current, MergeTalks(current, nil))
}

func TestSortTalks(t *testing.T) {
	talks := []model.Talk{
		{Number: model.CodedTalk("Zoom")},
		{Number: model.NumberedTalk(10)},
		{Number: model.CodedTalk("CO")},
		{Number: model.NumberedTalk(2)},
	}

	got := SortTalks(talks)

	var keys []string
	for _, talk := range got {
		keys = append(keys, talk.Number.String())
	}
	assert.Equal(t, []string{"2", "10", "CO", "Zoom"}, keys)
	assert.Equal(t, "Zoom", talks[0].Number.String(), "input is not reordered")
}
