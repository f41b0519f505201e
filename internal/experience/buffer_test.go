package experience

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LabyrinthReinforcementLearning/internal/testutil"
)

func createTestTransition(id string) *Transition {
	return &Transition{
		ID:        id,
		EpisodeID: "episode-1",
		Rows:      1,
		Cols:      2,
		Reward:    -0.01,
	}
}

func TestBuffer_Basic(t *testing.T) {
	buffer := NewBuffer(3, testutil.NopLogger())

	assert.Equal(t, 0, buffer.Size())
	assert.Equal(t, 3, buffer.Capacity())
	assert.False(t, buffer.IsFull())

	for i := 0; i < 3; i++ {
		require.NoError(t, buffer.Add(createTestTransition(fmt.Sprintf("t%d", i))))
	}
	assert.True(t, buffer.IsFull())

	got := buffer.Get(2)
	require.Len(t, got, 2)
	assert.Equal(t, "t0", got[0].ID)
	assert.Equal(t, "t1", got[1].ID)
	assert.Equal(t, 1, buffer.Size())
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultBufferCapacity, NewBuffer(0, testutil.NopLogger()).Capacity())
}

func TestBuffer_DropsOldest(t *testing.T) {
	buffer := NewBuffer(3, testutil.NopLogger())
	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(createTestTransition(fmt.Sprintf("t%d", i))))
	}

	all := buffer.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"t2", "t3", "t4"}, ids(all))
	assert.Equal(t, 0, buffer.Size())

	stats := buffer.Stats()
	assert.Equal(t, int64(5), stats.TotalAdded)
	assert.Equal(t, int64(2), stats.TotalDropped)
}

func TestBuffer_AddBatchAndLatest(t *testing.T) {
	buffer := NewBuffer(4, testutil.NopLogger())
	batch := make([]*Transition, 6)
	for i := range batch {
		batch[i] = createTestTransition(fmt.Sprintf("t%d", i))
	}
	require.NoError(t, buffer.AddBatch(batch))

	assert.Equal(t, []string{"t4", "t5"}, ids(buffer.GetLatest(2)))
	assert.Equal(t, []string{"t2", "t3", "t4", "t5"}, ids(buffer.GetLatest(10)))
	assert.Equal(t, 4, buffer.Size(), "GetLatest does not consume")
}

func TestBuffer_Sample(t *testing.T) {
	buffer := NewBuffer(10, testutil.NopLogger())
	for i := 0; i < 8; i++ {
		require.NoError(t, buffer.Add(createTestTransition(fmt.Sprintf("t%d", i))))
	}

	sample := buffer.Sample(5, testutil.NewTestRNG(testutil.DefaultSeed))
	require.Len(t, sample, 5)
	seen := make(map[string]bool)
	for _, tr := range sample {
		assert.False(t, seen[tr.ID], "sampling is without replacement")
		seen[tr.ID] = true
	}
	assert.Equal(t, 8, buffer.Size(), "sampling does not consume")

	again := buffer.Sample(5, testutil.NewTestRNG(testutil.DefaultSeed))
	assert.Equal(t, ids(sample), ids(again), "same seed, same sample")

	assert.Len(t, buffer.Sample(50, testutil.NewTestRNG(1)), 8)
}

func TestBuffer_Close(t *testing.T) {
	buffer := NewBuffer(5, testutil.NopLogger())
	require.NoError(t, buffer.Add(createTestTransition("kept")))

	require.NoError(t, buffer.Close())
	require.NoError(t, buffer.Close(), "closing twice is a no-op")
	assert.ErrorIs(t, buffer.Add(createTestTransition("late")), ErrBufferClosed)
	assert.ErrorIs(t, buffer.AddBatch([]*Transition{createTestTransition("late")}), ErrBufferClosed)

	kept := buffer.GetAll()
	require.Len(t, kept, 1)
	assert.Equal(t, "kept", kept[0].ID)
}

func TestBuffer_Clear(t *testing.T) {
	buffer := NewBuffer(5, testutil.NopLogger())
	require.NoError(t, buffer.Add(createTestTransition("a")))
	buffer.Clear()
	assert.Equal(t, 0, buffer.Size())
	assert.Empty(t, buffer.GetAll())
}

func TestBuffer_Concurrent(t *testing.T) {
	buffer := NewBuffer(1000, testutil.NopLogger())
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = buffer.Add(createTestTransition(fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	stats := buffer.Stats()
	assert.Equal(t, int64(800), stats.TotalAdded)
	assert.Equal(t, 800, stats.CurrentSize)
	assert.InDelta(t, 80.0, stats.UtilizationPct, 1e-9)
}

func ids(ts []*Transition) []string {
	out := make([]string, len(ts))
	for i, tr := range ts {
		out[i] = tr.ID
	}
	return out
}
