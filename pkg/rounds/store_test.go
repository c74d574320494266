package rounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/proposals"
	"github.com/korjavin/donutbot/pkg/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()

	backing, err := storage.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { backing.Close() })

	return NewStore(backing, proposals.New(0)), backing
}

func donutOf(groups ...[]string) models.Donut {
	d := make(models.Donut, len(groups))
	for i, ids := range groups {
		g := make(models.Group, len(ids))
		for j, id := range ids {
			g[j] = models.Participant{ID: id}
		}
		d[i] = g
	}
	return d
}

func TestStore_GetMissingIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	state, err := s.Get(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), state.ChatID)
	assert.Empty(t, state.Current)
	assert.Empty(t, state.Previous)
}

func TestStore_PromoteShiftsRounds(t *testing.T) {
	s, _ := newTestStore(t)
	first := donutOf([]string{"a", "b"}, []string{"c", "d"})
	second := donutOf([]string{"a", "c"}, []string{"b", "d"})

	s.SetProposed(42, first)
	got, err := s.Promote(42)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	state, err := s.Get(42)
	require.NoError(t, err)
	assert.Equal(t, first, state.Current)
	assert.Empty(t, state.Previous)

	s.SetProposed(42, second)
	_, err = s.Promote(42)
	require.NoError(t, err)

	state, err = s.Get(42)
	require.NoError(t, err)
	assert.Equal(t, second, state.Current)
	assert.Equal(t, first, state.Previous)
	assert.Equal(t, models.RoundStateVersion, state.Version)
}

func TestStore_PromoteClearsProposal(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetProposed(42, donutOf([]string{"a", "b"}))
	_, err := s.Promote(42)
	require.NoError(t, err)

	_, ok := s.Proposed(42)
	assert.False(t, ok)
}

func TestStore_PromoteWithoutProposal(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Promote(42)
	assert.ErrorIs(t, err, ErrNoProposedRound)

	state, err := s.Get(42)
	require.NoError(t, err)
	assert.Empty(t, state.Current)
}

func TestStore_SetProposedOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	first := donutOf([]string{"a", "b"})
	second := donutOf([]string{"c", "d"})

	s.SetProposed(42, first)
	s.SetProposed(42, second)

	got, err := s.Promote(42)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStore_UnparseableRecordIsEmpty(t *testing.T) {
	s, backing := newTestStore(t)

	// A record from some older incarnation of the bot.
	require.NoError(t, backing.Set(Key(42), "not a round state"))

	state, err := s.Get(42)
	require.NoError(t, err)
	assert.Empty(t, state.Current)
	assert.Empty(t, state.Previous)
}

func TestStore_UnknownVersionIsEmpty(t *testing.T) {
	s, backing := newTestStore(t)

	future := models.RoundState{
		Version: models.RoundStateVersion + 1,
		ChatID:  42,
		Current: donutOf([]string{"a", "b"}),
	}
	require.NoError(t, backing.Set(Key(42), future))

	state, err := s.Get(42)
	require.NoError(t, err)
	assert.Empty(t, state.Current)
}

func TestStore_RoundSerializesAsGroupList(t *testing.T) {
	s, backing := newTestStore(t)

	s.SetProposed(42, donutOf([]string{"a", "b"}))
	_, err := s.Promote(42)
	require.NoError(t, err)

	// The persisted current round is a plain array of groups, each an
	// array of member records.
	var raw struct {
		Current [][]map[string]string `json:"current"`
	}
	require.NoError(t, backing.Get(Key(42), &raw))
	require.Len(t, raw.Current, 1)
	require.Len(t, raw.Current[0], 2)
	assert.Equal(t, "a", raw.Current[0][0]["id"])
}
