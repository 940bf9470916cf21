package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHistoryCache_HitAfterMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockHistoryFetcher(ctrl)

	var hits, misses int
	cache := records.NewHistoryCache(next, 1, time.Minute, records.WithLookupObserver(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))

	want := []models.Set{set(5, 100), set(3, 110)}
	next.EXPECT().FetchHistoricSets(gomock.Any(), 1, "squat", sessionDate).Return(want, nil).Times(1)

	for range 3 {
		got, err := cache.FetchHistoricSets(context.Background(), 1, "squat", sessionDate)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestHistoryCache_KeyIncludesCutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockHistoryFetcher(ctrl)
	cache := records.NewHistoryCache(next, 1, 0)

	later := sessionDate.Add(24 * time.Hour)
	next.EXPECT().FetchHistoricSets(gomock.Any(), 1, "squat", sessionDate).Return([]models.Set{set(5, 100)}, nil)
	next.EXPECT().FetchHistoricSets(gomock.Any(), 1, "squat", later).Return([]models.Set{set(5, 100), set(5, 105)}, nil)

	early, err := cache.FetchHistoricSets(context.Background(), 1, "squat", sessionDate)
	require.NoError(t, err)
	late, err := cache.FetchHistoricSets(context.Background(), 1, "squat", later)
	require.NoError(t, err)

	assert.Len(t, early, 1)
	assert.Len(t, late, 2)
}

func TestHistoryCache_InvalidateDropsPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockHistoryFetcher(ctrl)
	cache := records.NewHistoryCache(next, 1, 0)

	next.EXPECT().FetchHistoricSets(gomock.Any(), 1, "squat", sessionDate).Return([]models.Set{set(5, 100)}, nil).Times(2)
	next.EXPECT().FetchHistoricSets(gomock.Any(), 1, "bench-press", sessionDate).Return([]models.Set{set(5, 80)}, nil).Times(1)

	ctx := context.Background()
	_, err := cache.FetchHistoricSets(ctx, 1, "squat", sessionDate)
	require.NoError(t, err)
	_, err = cache.FetchHistoricSets(ctx, 1, "bench-press", sessionDate)
	require.NoError(t, err)

	cache.Invalidate(1, "squat")

	_, err = cache.FetchHistoricSets(ctx, 1, "squat", sessionDate)
	require.NoError(t, err)
	_, err = cache.FetchHistoricSets(ctx, 1, "bench-press", sessionDate)
	require.NoError(t, err)
}

func TestHistoryCache_ErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockHistoryFetcher(ctrl)
	cache := records.NewHistoryCache(next, 1, 0)

	storeErr := errors.New("timeout")
	gomock.InOrder(
		next.EXPECT().FetchHistoricSets(gomock.Any(), 2, "deadlift", sessionDate).Return(nil, storeErr),
		next.EXPECT().FetchHistoricSets(gomock.Any(), 2, "deadlift", sessionDate).Return([]models.Set{set(1, 200)}, nil),
	)

	_, err := cache.FetchHistoricSets(context.Background(), 2, "deadlift", sessionDate)
	assert.Same(t, storeErr, err)

	sets, err := cache.FetchHistoricSets(context.Background(), 2, "deadlift", sessionDate)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}
