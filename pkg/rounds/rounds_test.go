package rounds

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/partition"
	"github.com/korjavin/donutbot/pkg/proposals"
	"github.com/korjavin/donutbot/pkg/storage"
)

type recordingMaterializer struct {
	mu      sync.Mutex
	groups  []models.Group
	failFor string
}

func (r *recordingMaterializer) Materialize(chatID int64, group models.Group) error {
	r.mu.Lock()
	r.groups = append(r.groups, group)
	r.mu.Unlock()

	if r.failFor != "" && group.Contains(r.failFor) {
		return errors.New("invite failed")
	}
	return nil
}

func newTestService(t *testing.T, mat *recordingMaterializer) *Service {
	t.Helper()

	backing, err := storage.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { backing.Close() })

	store := NewStore(backing, proposals.New(0))
	return NewWithRand(store, mat, rand.New(rand.NewSource(42)))
}

func TestService_ProposeEmptyRoster(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})

	_, err := s.Propose(1, nil, 2)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestService_ProposeThenConfirm(t *testing.T) {
	mat := &recordingMaterializer{}
	s := newTestService(t, mat)
	roster := members(5)

	p, err := s.Propose(1, roster, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Donut.Size())

	donut, results, err := s.Confirm(1)
	require.NoError(t, err)
	assert.Equal(t, p.Donut, donut)

	// One materialize instruction per subgroup, all successful.
	require.Len(t, results, len(donut))
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Len(t, mat.groups, len(donut))

	current, err := s.Current(1)
	require.NoError(t, err)
	assert.Equal(t, p.Donut, current)

	previous, err := s.Previous(1)
	require.NoError(t, err)
	assert.Empty(t, previous)
}

func TestService_ConfirmWithoutProposal(t *testing.T) {
	mat := &recordingMaterializer{}
	s := newTestService(t, mat)

	_, _, err := s.Confirm(1)
	assert.ErrorIs(t, err, ErrNoProposedRound)
	assert.Empty(t, mat.groups)
}

func TestService_ConfirmTwice(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})

	_, err := s.Propose(1, members(4), 2)
	require.NoError(t, err)

	_, _, err = s.Confirm(1)
	require.NoError(t, err)

	_, _, err = s.Confirm(1)
	assert.ErrorIs(t, err, ErrNoProposedRound)
}

func TestService_SecondRoundShiftsPrevious(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})
	roster := members(6)

	first, err := s.Propose(1, roster, 2)
	require.NoError(t, err)
	_, _, err = s.Confirm(1)
	require.NoError(t, err)

	second, err := s.Propose(1, roster, 2)
	require.NoError(t, err)
	_, _, err = s.Confirm(1)
	require.NoError(t, err)

	current, err := s.Current(1)
	require.NoError(t, err)
	assert.Equal(t, second.Donut, current)

	previous, err := s.Previous(1)
	require.NoError(t, err)
	assert.Equal(t, first.Donut, previous)
}

func TestService_ReproposeReplacesPending(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})
	roster := members(6)

	_, err := s.Propose(1, roster, 2)
	require.NoError(t, err)
	second, err := s.Propose(1, roster, 3)
	require.NoError(t, err)

	donut, _, err := s.Confirm(1)
	require.NoError(t, err)
	assert.Equal(t, second.Donut, donut)
}

func TestService_MaterializeFailureKeepsPromotion(t *testing.T) {
	mat := &recordingMaterializer{failFor: "m0"}
	s := newTestService(t, mat)

	p, err := s.Propose(1, members(4), 2)
	require.NoError(t, err)

	donut, results, err := s.Confirm(1)
	require.NoError(t, err)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	// The round stays promoted despite the failed subgroup.
	current, err := s.Current(1)
	require.NoError(t, err)
	assert.Equal(t, p.Donut, current)
	assert.Equal(t, donut, current)
}

func TestService_SampleDoesNotPersist(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})

	d := s.Sample(members(4), 2)
	assert.Equal(t, 4, d.Size())

	_, ok := s.Proposed(1)
	assert.False(t, ok)
	current, err := s.Current(1)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestService_OverlapTest(t *testing.T) {
	s := newTestService(t, &recordingMaterializer{})
	roster := members(6)

	a, b, overlapping := s.OverlapTest(roster, 2)
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, 6, b.Size())
	assert.Equal(t, partition.Overlaps(a, b), overlapping)
}
