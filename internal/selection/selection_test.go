package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/carbondash/internal/model"
)

var (
	testStreams = []model.Stream{
		{ID: "s1", Name: "25 King"},
		{ID: "s2", Name: "Annex"},
	}
	testCommits = []model.Commit{
		{ID: "c3", Message: "structure", StreamID: "s1"},
		{ID: "c2", Message: "facade", StreamID: "s1"},
		{ID: "c1", Message: "structure", StreamID: "s1"},
	}
)

func TestResolve_Defaults(t *testing.T) {
	sel, err := Resolve("", "", testStreams, testCommits, FirstWins)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{StreamID: "s1", StreamName: "25 King", CommitID: "c3", CommitLabel: "structure"}, sel)
}

func TestResolve_ByLabel(t *testing.T) {
	sel, err := Resolve("25 King", "facade", testStreams, testCommits, FirstWins)
	require.NoError(t, err)
	assert.Equal(t, "c2", sel.CommitID)
}

func TestResolve_DuplicateLabelFirstWins(t *testing.T) {
	sel, err := Resolve("25 King", "structure", testStreams, testCommits, FirstWins)
	require.NoError(t, err)
	assert.Equal(t, "c3", sel.CommitID, "newest duplicate wins")
}

func TestResolve_DuplicateLabelStrict(t *testing.T) {
	_, err := Resolve("25 King", "structure", testStreams, testCommits, Strict)
	assert.ErrorIs(t, err, model.ErrAmbiguousSelection)

	sel, err := Resolve("25 King", "facade", testStreams, testCommits, Strict)
	require.NoError(t, err)
	assert.Equal(t, "c2", sel.CommitID)
}

func TestResolve_UnknownStreamAndCommit(t *testing.T) {
	_, err := Resolve("missing", "", testStreams, testCommits, FirstWins)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = Resolve("25 King", "missing", testStreams, testCommits, FirstWins)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = Resolve("", "", nil, testCommits, FirstWins)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolve_StreamWithoutCommits(t *testing.T) {
	sel, err := Resolve("Annex", "", testStreams, nil, FirstWins)
	require.NoError(t, err)
	assert.Equal(t, "s2", sel.StreamID)
	assert.Empty(t, sel.CommitID)
}

func TestResolve_Idempotent(t *testing.T) {
	first, err1 := Resolve("25 King", "structure", testStreams, testCommits, FirstWins)
	second, err2 := Resolve("25 King", "structure", testStreams, testCommits, FirstWins)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestOptions_KeepsDuplicatesInOrder(t *testing.T) {
	opts := Options(testCommits)
	require.Len(t, opts, 3)
	assert.Equal(t, Option{Label: "structure", CommitID: "c3"}, opts[0])
	assert.Equal(t, Option{Label: "structure", CommitID: "c1"}, opts[2])
}

func TestResolveByID(t *testing.T) {
	sel, err := ResolveByID("25 King", "c1", testStreams, testCommits)
	require.NoError(t, err)
	assert.Equal(t, "c1", sel.CommitID)
	assert.Equal(t, "structure", sel.CommitLabel)

	_, err = ResolveByID("25 King", "zz", testStreams, testCommits)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReconcile(t *testing.T) {
	prev := model.Selection{StreamID: "s1", StreamName: "25 King", CommitID: "c2"}
	got, stale := Reconcile(prev, testCommits)
	assert.False(t, stale)
	assert.Equal(t, "facade", got.CommitLabel)

	prev.CommitID = "gone"
	got, stale = Reconcile(prev, testCommits)
	assert.True(t, stale)
	assert.Equal(t, "c3", got.CommitID)
	assert.True(t, IsStale(prev, testCommits))
}

func TestReconcile_OtherStreamIsStale(t *testing.T) {
	prev := model.Selection{StreamID: "s2", StreamName: "Annex", CommitID: "c2"}
	got, stale := Reconcile(prev, testCommits)
	assert.True(t, stale)
	assert.Equal(t, "s2", got.StreamID)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FirstWins, p)

	_, err = ParsePolicy("last-wins")
	assert.Error(t, err)
}
