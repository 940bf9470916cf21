package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var sessionDate = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func sessionContext(exercises ...models.SessionExercise) models.SessionContext {
	return models.SessionContext{
		SessionID: uuid.New(),
		UserID:    7,
		CreatedAt: sessionDate,
		Exercises: exercises,
	}
}

func TestEngine_ComputeForSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockHistoryFetcher(ctrl)
	engine := records.NewEngine(history, 2)

	sc := sessionContext(
		models.SessionExercise{
			ExerciseID:   "bench-press",
			ExerciseName: "Bench Press",
			Sets:         []models.Set{set(1, 105), set(1, 95)},
		},
		models.SessionExercise{
			ExerciseID:   "barbell-row",
			ExerciseName: "Barbell Row",
			Sets:         []models.Set{set(8, 70)},
		},
		models.SessionExercise{
			ExerciseID:   "squat",
			ExerciseName: "Squat",
			Sets:         []models.Set{set(5, 100), set(5, 102), set(5, 98), set(5, 101), set(5, 99)},
		},
	)

	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "bench-press", sessionDate).
		Return([]models.Set{set(1, 100)}, nil)
	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "barbell-row", sessionDate).
		Return([]models.Set{set(8, 75)}, nil)
	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "squat", sessionDate).
		Return(nil, nil)

	result, err := engine.ComputeForSession(context.Background(), sc)
	require.NoError(t, err)

	// barbell row did not improve and is omitted
	require.Len(t, result.PerExercise, 2)
	assert.Equal(t, "bench-press", result.PerExercise[0].ExerciseID)
	assert.Equal(t, "Bench Press", result.PerExercise[0].ExerciseName)
	assert.Len(t, result.PerExercise[0].PRs, 2)
	assert.Equal(t, "squat", result.PerExercise[1].ExerciseID)
	assert.Len(t, result.PerExercise[1].PRs, 2)
	assert.Equal(t, 4, result.TotalPRs)
}

func TestEngine_EveryQualifyingSetIsARecordWithoutHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockHistoryFetcher(ctrl)
	engine := records.NewEngine(history, 0)

	sc := sessionContext(models.SessionExercise{
		ExerciseID: "deadlift",
		Sets:       []models.Set{set(1, 180), set(3, 160), set(5, 140)},
	})
	history.EXPECT().FetchHistoricSets(gomock.Any(), 7, "deadlift", sessionDate).Return(nil, nil)

	result, err := engine.ComputeForSession(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, result.PerExercise, 1)

	labels := make([]string, 0, 4)
	for _, pr := range result.PerExercise[0].PRs {
		labels = append(labels, pr.Label)
		assert.Nil(t, pr.Previous)
	}
	assert.Equal(t, []string{"1RM", "1-rep max", "3-rep max", "5-rep max"}, labels)
	assert.Equal(t, 4, result.TotalPRs)
}

func TestEngine_SkipsFetchForEmptyExercise(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockHistoryFetcher(ctrl)
	engine := records.NewEngine(history, 4)

	sc := sessionContext(models.SessionExercise{ExerciseID: "plank"})

	result, err := engine.ComputeForSession(context.Background(), sc)
	require.NoError(t, err)
	assert.Zero(t, result.TotalPRs)
	assert.Empty(t, result.PerExercise)
}

func TestEngine_FetchErrorPropagatesUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockHistoryFetcher(ctrl)
	engine := records.NewEngine(history, 1)

	storeErr := errors.New("connection reset")
	sc := sessionContext(
		models.SessionExercise{ExerciseID: "squat", Sets: []models.Set{set(5, 100)}},
		models.SessionExercise{ExerciseID: "bench-press", Sets: []models.Set{set(5, 80)}},
	)
	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "squat", sessionDate).
		Return(nil, storeErr)
	// with a limit of one the second fetch may or may not start before cancellation
	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "bench-press", sessionDate).
		Return(nil, nil).
		MaxTimes(1)

	result, err := engine.ComputeForSession(context.Background(), sc)
	assert.Nil(t, result)
	assert.Same(t, storeErr, err)
}

func TestEngine_IdempotentForSameSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockHistoryFetcher(ctrl)
	engine := records.NewEngine(history, 2)

	sc := sessionContext(models.SessionExercise{
		ExerciseID: "overhead-press",
		Sets:       []models.Set{set(3, 60), set(3, 62.5)},
	})
	history.EXPECT().
		FetchHistoricSets(gomock.Any(), 7, "overhead-press", sessionDate).
		Return([]models.Set{set(3, 60)}, nil).
		Times(2)

	first, err := engine.ComputeForSession(context.Background(), sc)
	require.NoError(t, err)
	second, err := engine.ComputeForSession(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.TotalPRs)
}
