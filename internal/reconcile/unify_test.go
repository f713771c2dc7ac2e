package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

func TestUnify_EmptyIncomingPreservesOrder(t *testing.T) {
	current := []model.Host{{Nom: "B"}, {Nom: "A"}}

	got := UnifyHosts(current, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Nom)
	assert.Equal(t, "A", got[1].Nom)
}

func TestUnify_IncomingReplacesWholeRecord(t *testing.T) {
	current := []model.Host{{Nom: "A", Telephone: "1", Address: "rue A"}}
	incoming := []model.Host{{Nom: "A", Telephone: "2"}}

	got := UnifyHosts(current, incoming)

	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Telephone)
	assert.Empty(t, got[0].Address, "last writer wins, no field merge")
}

func TestUnify_ReplacementKeepsPosition(t *testing.T) {
	current := []model.Speaker{{ID: "1", Nom: "Paul"}, {ID: "2", Nom: "Marc"}}
	incoming := []model.Speaker{{ID: "3", Nom: "Luc"}, {ID: "9", Nom: "PAUL"}}

	got := UnifySpeakers(current, incoming)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "PAUL", got[0].Nom, "matched by name, stored id kept")
}

func TestUnifySpeakers_SameIDIsOneSpeaker(t *testing.T) {
	current := []model.Speaker{{ID: "s1", Nom: "Jean Dupont"}, {ID: "s2", Nom: "Luc"}}
	incoming := []model.Speaker{{ID: "s1", Nom: "Jean Dupond", Telephone: "0611"}}

	got := UnifySpeakers(current, incoming)

	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "Jean Dupond", got[0].Nom)
	assert.Equal(t, "0611", got[0].Telephone)
}

func TestUnifySpeakers_RenameFreesOldName(t *testing.T) {
	current := []model.Speaker{{ID: "s1", Nom: "Jean Dupont"}}
	incoming := []model.Speaker{{ID: "s1", Nom: "Jean Dupond"}, {ID: "s9", Nom: "Jean Dupont"}}

	got := UnifySpeakers(current, incoming)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"s1", "s9"}, []string{got[0].ID, got[1].ID})
	assert.Equal(t, []string{"Jean Dupond", "Jean Dupont"}, []string{got[0].Nom, got[1].Nom})
}

func TestUnifyHosts_ByID(t *testing.T) {
	current := []model.Host{{ID: "h1", Nom: "Marie"}, {Nom: "Paul"}}
	incoming := []model.Host{{ID: "h1", Nom: "Marie-Claire"}, {ID: "h7", Nom: "paul"}}

	got := UnifyHosts(current, incoming)

	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].ID)
	assert.Equal(t, "Marie-Claire", got[0].Nom)
	assert.Equal(t, "h7", got[1].ID, "stored record had no id")
	assert.Equal(t, "paul", got[1].Nom)
}

func TestRenamed(t *testing.T) {
	before := []model.Speaker{{ID: "s1", Nom: "Jean Dupont"}, {ID: "s2", Nom: "Luc"}, {Nom: "Sans Id"}}
	after := []model.Speaker{{ID: "s1", Nom: "Jean Dupond"}, {ID: "s2", Nom: "LUC"}}

	got := renamedSpeakers(before, after)

	assert.Equal(t, map[string]string{"jean dupont": "Jean Dupond"}, got)
}

func TestUnify_DuplicatesInsideIncomingLastWins(t *testing.T) {
	incoming := []model.Host{{Nom: "  José  ", Telephone: "1"}, {Nom: "Jose", Telephone: "2"}}

	got := UnifyHosts(nil, incoming)

	require.Len(t, got, 1)
	assert.Equal(t, "Jose", got[0].Nom)
	assert.Equal(t, "2", got[0].Telephone)
}

func TestUnify_DoesNotMutateInputs(t *testing.T) {
	current := []model.Host{{Nom: "A", Telephone: "1"}}
	incoming := []model.Host{{Nom: "A", Telephone: "2"}}

	_ = UnifyHosts(current, incoming)

	assert.Equal(t, "1", current[0].Telephone)
	assert.Equal(t, "2", incoming[0].Telephone)
}

func TestFindKeyCollisions(t *testing.T) {
	hosts := []model.Host{{Nom: "José"}, {Nom: "Marie"}, {Nom: "jose "}, {Nom: "JOSE"}}

	got := FindKeyCollisions(hosts, identity.HostKey)

	require.Len(t, got, 1)
	assert.Equal(t, "jose", got[0].Key)
	assert.Equal(t, []int{0, 2, 3}, got[0].Indexes)
}

func TestFindKeyCollisions_None(t *testing.T) {
	hosts := []model.Host{{Nom: "José"}, {Nom: "Marie"}}
	assert.Empty(t, FindKeyCollisions(hosts, identity.HostKey))
}
