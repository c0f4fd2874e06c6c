package salesreport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAcquireCreatesAndReuses(t *testing.T) {
	reg := NewRegistry(time.Hour)

	id, board, release := reg.Acquire("")
	require.NotEmpty(t, id)
	board.OnColumnActivate(TablePivot, ColumnTotal)
	release()

	again, same, release := reg.Acquire(id)
	assert.Equal(t, id, again)
	assert.Same(t, board, same)
	assert.Equal(t, asc(ColumnTotal), same.SortState(TablePivot))
	release()

	other, fresh, release := reg.Acquire("unknown-id")
	assert.NotEqual(t, "unknown-id", other)
	assert.NotSame(t, board, fresh)
	release()
	assert.Equal(t, 2, reg.Len())
}

func TestRegistrySweepEvictsIdleBoards(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	reg := NewRegistry(30 * time.Minute)
	reg.now = func() time.Time { return now }

	idle, _, release := reg.Acquire("")
	release()
	now = now.Add(20 * time.Minute)
	active, _, release := reg.Acquire("")
	release()

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	got, _, release := reg.Acquire(active)
	release()
	assert.Equal(t, active, got)
	got, _, release = reg.Acquire(idle)
	release()
	assert.NotEqual(t, idle, got)
}

func TestRegistrySweepDisabled(t *testing.T) {
	reg := NewRegistry(0)
	_, _, release := reg.Acquire("")
	release()
	assert.Zero(t, reg.Sweep())
}

func TestRegistrySerialisesBoardAccess(t *testing.T) {
	reg := NewRegistry(time.Hour)
	id, _, release := reg.Acquire("")
	release()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, board, release := reg.Acquire(id)
			defer release()
			board.OnColumnActivate(TablePivot, ColumnFoodName)
		}()
	}
	wg.Wait()

	_, board, release := reg.Acquire(id)
	defer release()
	// 50 clicks: 16 full cycles plus two more lands on desc.
	assert.Equal(t, desc(ColumnFoodName), board.SortState(TablePivot))
}
