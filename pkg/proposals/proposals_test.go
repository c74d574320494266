package proposals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/donutbot/pkg/models"
)

func donutOf(ids ...string) models.Donut {
	g := make(models.Group, len(ids))
	for i, id := range ids {
		g[i] = models.Participant{ID: id}
	}
	return models.Donut{g}
}

func TestManager_SetAndGet(t *testing.T) {
	m := New(0)

	p := m.Set(42, donutOf("a", "b"))
	assert.NotEmpty(t, p.ID)

	got, ok := m.Get(42)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, donutOf("a", "b"), got.Donut)
}

func TestManager_GetMissing(t *testing.T) {
	m := New(0)

	_, ok := m.Get(42)
	assert.False(t, ok)
}

func TestManager_SetReplaces(t *testing.T) {
	m := New(0)

	first := m.Set(42, donutOf("a", "b"))
	second := m.Set(42, donutOf("c", "d"))
	assert.NotEqual(t, first.ID, second.ID)

	got, ok := m.Get(42)
	require.True(t, ok)
	assert.Equal(t, donutOf("c", "d"), got.Donut)
}

func TestManager_ChatsAreIndependent(t *testing.T) {
	m := New(0)

	m.Set(1, donutOf("a", "b"))

	_, ok := m.Get(2)
	assert.False(t, ok)

	m.Clear(2)
	_, ok = m.Get(1)
	assert.True(t, ok)
}

func TestManager_Clear(t *testing.T) {
	m := New(0)

	m.Set(42, donutOf("a", "b"))
	m.Clear(42)

	_, ok := m.Get(42)
	assert.False(t, ok)
}

func TestManager_Expiry(t *testing.T) {
	m := New(10 * time.Millisecond)

	m.Set(42, donutOf("a", "b"))
	time.Sleep(20 * time.Millisecond)

	_, ok := m.Get(42)
	assert.False(t, ok)
}
