package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	tu "github.com/kbvlyon/visitsync/internal/testutil"
)

func seqOpts() MergeOptions {
	return MergeOptions{IDs: ids.NewSequence("v")}
}

func TestMergeVisits_EmptyIncomingHostFallsBack(t *testing.T) {
	current := []model.Visit{tu.Visit("A", "2025-01-01", tu.WithVisitID("a"), tu.WithHost("X", ""))}
	incoming := []model.Visit{tu.Visit("A", "2025-01-01", tu.WithHost("", ""))}

	res := MergeVisits(current, nil, incoming, nil, seqOpts())

	require.Len(t, res.Active, 1)
	assert.Equal(t, "X", res.Active[0].Host)
	assert.Equal(t, "a", res.Active[0].VisitID)
	assert.Equal(t, 1, res.Duplicates)
}

func TestMergeVisits_IncomingOverlaysNonEmptyFields(t *testing.T) {
	current := []model.Visit{tu.Visit("A", "2025-01-01",
		tu.WithVisitID("old"), tu.WithHost("X", "h-x"), tu.WithTalk("12", "Thème"))}
	in := tu.Visit("a ", "2025-01-01", tu.WithVisitID("new"), tu.WithHost("Y", ""), tu.WithStatus(model.StatusConfirmed))
	in.VisitTime = "10:00"
	in.TalkNoOrType = ""
	in.TalkTheme = ""

	res := MergeVisits(current, nil, []model.Visit{in}, nil, seqOpts())

	require.Len(t, res.Active, 1)
	got := res.Active[0]
	assert.Equal(t, "new", got.VisitID)
	assert.Equal(t, "10:00", got.VisitTime)
	assert.Equal(t, "Y", got.Host)
	assert.Empty(t, got.HostID, "host id follows the host name")
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, "12", got.TalkNoOrType)
	assert.Equal(t, "Thème", got.TalkTheme)
}

func TestMergeVisits_CommunicationDeepMerged(t *testing.T) {
	current := []model.Visit{tu.Visit("A", "2025-01-01",
		tu.WithCommunication("confirmation", "speaker", "t1"),
		tu.WithCommunication("thanks", "host", "t2"))}
	incoming := []model.Visit{tu.Visit("A", "2025-01-01",
		tu.WithCommunication("confirmation", "speaker", "t3"),
		tu.WithCommunication("confirmation", "host", "t4"))}

	res := MergeVisits(current, nil, incoming, nil, seqOpts())

	require.Len(t, res.Active, 1)
	assert.Equal(t, model.CommunicationStatus{
		"confirmation": {"speaker": "t3", "host": "t4"},
		"thanks":       {"host": "t2"},
	}, res.Active[0].CommunicationStatus)
}

func TestMergeVisits_GeneratesMissingVisitID(t *testing.T) {
	incoming := []model.Visit{tu.Visit("A", "2025-01-01"), tu.Visit("B", "2025-01-01", tu.WithVisitID("b"))}

	res := MergeVisits(nil, nil, incoming, nil, seqOpts())

	require.Len(t, res.Active, 2)
	assert.Equal(t, "v-1", res.Active[0].VisitID)
	assert.Equal(t, "b", res.Active[1].VisitID)
	assert.Empty(t, incoming[0].VisitID, "input is not modified")
}

func TestMergeVisits_PartitionFollowsSourceList(t *testing.T) {
	done := tu.Visit("A", "2024-12-01", tu.WithStatus(model.StatusPending))

	res := MergeVisits(nil, []model.Visit{done}, nil, nil, seqOpts())

	assert.Empty(t, res.Active)
	require.Len(t, res.Archived, 1)
	assert.Equal(t, model.StatusPending, res.Archived[0].Status)
}

func TestMergeVisits_CrossPartitionKeepBoth(t *testing.T) {
	current := []model.Visit{tu.Visit("A", "2025-01-01", tu.WithVisitID("a"))}
	incomingArchived := []model.Visit{tu.Visit("A", "2025-01-01", tu.WithVisitID("a"), tu.WithStatus(model.StatusCompleted))}

	res := MergeVisits(current, nil, nil, incomingArchived, seqOpts())

	require.Len(t, res.Active, 1)
	require.Len(t, res.Archived, 1)
	assert.Equal(t, "a", res.Active[0].VisitID)
	assert.Equal(t, "a", res.Archived[0].VisitID)
	assert.Equal(t, 1, res.CrossPartition)
	assert.Equal(t, 0, res.Duplicates)
}

func TestMergeVisits_CrossPartitionArchivedWins(t *testing.T) {
	current := []model.Visit{tu.Visit("A", "2025-01-01")}
	incomingArchived := []model.Visit{tu.Visit("A", "2025-01-01", tu.WithStatus(model.StatusCompleted))}

	opts := seqOpts()
	opts.CrossPartition = ArchivedWins
	res := MergeVisits(current, nil, nil, incomingArchived, opts)

	assert.Empty(t, res.Active)
	require.Len(t, res.Archived, 1)
	assert.Equal(t, 1, res.CrossPartition)
}

func TestMergeVisits_FirstSeenOrder(t *testing.T) {
	current := []model.Visit{tu.Visit("B", "2025-01-02"), tu.Visit("A", "2025-01-01")}
	incoming := []model.Visit{tu.Visit("C", "2025-01-03"), tu.Visit("A", "2025-01-01")}

	res := MergeVisits(current, nil, incoming, nil, seqOpts())

	require.Len(t, res.Active, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{res.Active[0].Nom, res.Active[1].Nom, res.Active[2].Nom})
}

func TestMergeVisits_SelfMergeIsIdempotent(t *testing.T) {
	active := []model.Visit{
		tu.Visit("A", "2025-01-01", tu.WithVisitID("a")),
		tu.Visit("B", "2025-01-02", tu.WithVisitID("b")),
	}
	archived := []model.Visit{tu.Visit("C", "2024-12-01", tu.WithVisitID("c"))}

	res := MergeVisits(active, archived, active, archived, seqOpts())

	assert.Equal(t, active, res.Active)
	assert.Equal(t, archived, res.Archived)
	assert.Equal(t, 3, res.Duplicates)
}
