package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompactor struct {
	compacted []uint
	listIDs   []uint
	failOn    uint
}

func (f *fakeCompactor) Compact(listID uint) error {
	if f.failOn != 0 && listID == f.failOn {
		return errors.New("locked")
	}
	f.compacted = append(f.compacted, listID)
	return nil
}

func (f *fakeCompactor) StandardListIDs() ([]uint, error) {
	return f.listIDs, nil
}

func TestCompactListProcessor(t *testing.T) {
	t.Run("compacts the requested list", func(t *testing.T) {
		compactor := &fakeCompactor{}
		processor := CompactListProcessor(compactor)

		err := processor(context.Background(), CompactListTask{ListID: 7})
		require.NoError(t, err)
		assert.Equal(t, []uint{7}, compactor.compacted)
	})

	t.Run("propagates compaction failures", func(t *testing.T) {
		compactor := &fakeCompactor{failOn: 7}
		processor := CompactListProcessor(compactor)

		err := processor(context.Background(), CompactListTask{ListID: 7})
		assert.Error(t, err)
	})

	t.Run("fails without a compactor", func(t *testing.T) {
		processor := CompactListProcessor(nil)
		assert.Error(t, processor(context.Background(), CompactListTask{ListID: 1}))
	})
}

func TestCompactAllListsProcessor(t *testing.T) {
	t.Run("sweeps every standard list", func(t *testing.T) {
		compactor := &fakeCompactor{listIDs: []uint{1, 2, 3}}
		processor := CompactAllListsProcessor(compactor)

		err := processor(context.Background(), CompactAllListsTask{})
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2, 3}, compactor.compacted)
	})

	t.Run("continues past failures and reports them", func(t *testing.T) {
		compactor := &fakeCompactor{listIDs: []uint{1, 2, 3}, failOn: 2}
		processor := CompactAllListsProcessor(compactor)

		err := processor(context.Background(), CompactAllListsTask{})
		assert.Error(t, err)
		assert.Equal(t, []uint{1, 3}, compactor.compacted)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		compactor := &fakeCompactor{listIDs: []uint{1, 2, 3}}
		processor := CompactAllListsProcessor(compactor)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := processor(ctx, CompactAllListsTask{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, compactor.compacted)
	})
}

func TestQueueConfigs(t *testing.T) {
	single := CompactListTask{}.Config()
	assert.Equal(t, "compact_list", single.Name)
	assert.Equal(t, 3, single.MaxAttempts)

	sweep := CompactAllListsTask{}.Config()
	assert.Equal(t, "compact_all_lists", sweep.Name)
	assert.Equal(t, 1, sweep.MaxAttempts)
}
