package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCount(t *testing.T, s *SQLiteStore) int {
	t.Helper()
	models, err := s.ListModels(context.Background())
	require.NoError(t, err)
	n := 0
	for _, m := range models {
		if m.Active {
			n++
		}
	}
	return n
}

func TestSetActiveModelRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.SetActiveModel(ctx, 3)
	require.NoError(t, err)
	require.EqualValues(t, 3, m.ID)
	require.True(t, m.Active)

	got, err := s.ActiveModel(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ID)
	assert.Equal(t, "mistralai/mistral-small-24b-instruct-2501:free", got.Key)
	assert.Equal(t, "Mistral Small 24b (free)", got.Label)

	assert.Equal(t, 1, activeCount(t, s))
}

func TestSetActiveModelUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SetActiveModel(ctx, 999)
	require.ErrorIs(t, err, ErrUnknownModel)

	// The failed switch must not disturb the current active row.
	got, err := s.ActiveModel(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ID)
	assert.Equal(t, 1, activeCount(t, s))
}

func TestActiveModelFallbackActivatesLowest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Force the should-not-happen zero-active state under the engine.
	_, err := s.db.Exec("UPDATE models SET active = 0")
	require.NoError(t, err)

	m, err := s.ActiveModel(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, m.ID)
	assert.True(t, m.Active)
	assert.Equal(t, 1, activeCount(t, s))
}

func TestActiveModelEmptyRegistry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec("DELETE FROM models")
	require.NoError(t, err)

	_, err = s.ActiveModel(ctx)
	require.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = s.SetActiveModel(ctx, 1)
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestSetActiveModelConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := []int64{1, 2, 3, 4}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				id := ids[(n+j)%len(ids)]
				_, err := s.SetActiveModel(ctx, id)
				if errors.Is(err, ErrStoreBusy) {
					continue
				}
				require.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	// After all switches settle, exactly one row is active.
	m, err := s.ActiveModel(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, m.ID)
	assert.Equal(t, 1, activeCount(t, s))
}

func TestListModelsOrdered(t *testing.T) {
	s := newTestStore(t)

	models, err := s.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)
	for i, m := range models {
		assert.EqualValues(t, i+1, m.ID)
	}
}
