// Package training ties storage, the PR engine and the strength aggregator
// together for the HTTP and MCP transports.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/metrics"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/strength"
	"github.com/google/uuid"
)

// ErrInvalid marks input rejected by validation.
var ErrInvalid = errors.New("invalid input")

// Store is the persistence the service needs.
type Store interface {
	InsertSession(ctx context.Context, s *models.Session) (int64, error)
	ReplaceSessions(ctx context.Context, userID int, source string, sessions []models.Session) (*models.Replacement, error)
	GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, userID int, id uuid.UUID) error
	ListSessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionSummary, error)
	QueryExerciseSets(ctx context.Context, userID int, exercise string, start, end time.Time) ([]models.ExerciseSetRow, error)
	QueryLiftRows(ctx context.Context, userID int) ([]models.ExerciseSetRow, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) error
}

// Invalidator drops cached history of one user's exercise.
type Invalidator interface {
	Invalidate(userID int, exerciseID string)
}

// Service implements the training operations shared by all transports.
type Service struct {
	store     Store
	engine    *records.Engine
	cache     Invalidator
	standards strength.Standards
	metrics   *metrics.Manager
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistoryCache registers the cache to invalidate when sets are stored.
func WithHistoryCache(c Invalidator) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records PR and import metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for sessions logged without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. The engine should read history through the
// same cache passed to WithHistoryCache, if any.
func NewService(store Store, engine *records.Engine, standards strength.Standards, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		engine:    engine,
		standards: standards,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession is a session as submitted by a client.
type NewSession struct {
	Name      string        `json:"name"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
	Duration  string        `json:"duration,omitempty"`
	Exercises []NewExercise `json:"exercises"`
}

// NewExercise is one submitted exercise. ExerciseID and MuscleGroup are
// derived from the name when empty.
type NewExercise struct {
	ExerciseID  string       `json:"exercise_id,omitempty"`
	Name        string       `json:"name"`
	MuscleGroup string       `json:"muscle_group,omitempty"`
	Sets        []models.Set `json:"sets"`
}

// LogSession stores a session and detects the PRs it set. A failed PR
// computation is logged and yields a nil result; the session stays saved.
func (s *Service) LogSession(ctx context.Context, userID int, in NewSession) (*models.Session, *records.Result, error) {
	session, err := s.buildSession(userID, in)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.store.InsertSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("saving session: %w", err)
	}
	s.invalidate(userID, session.Exercises)

	result, err := s.computeRecords(ctx, session)
	if err != nil {
		s.metrics.RecordsFailed()
		s.log.Error("PR computation failed", "session_id", session.ID, "user_id", userID, "error", err)
		return session, nil, nil
	}
	for _, ex := range result.PerExercise {
		for _, pr := range ex.PRs {
			s.metrics.RecordPR(string(pr.Kind))
		}
	}
	return session, result, nil
}

func (s *Service) buildSession(userID int, in NewSession) (*models.Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Workout"
	}
	createdAt := s.now().UTC()
	if in.CreatedAt != nil {
		createdAt = in.CreatedAt.UTC()
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: createdAt,
		Duration:  in.Duration,
		Exercises: make([]models.SessionExercise, 0, len(in.Exercises)),
	}
	for i, ex := range in.Exercises {
		exName := strings.TrimSpace(ex.Name)
		if exName == "" {
			return nil, fmt.Errorf("%w: exercise %d has no name", ErrInvalid, i+1)
		}
		id := ex.ExerciseID
		if id == "" {
			id = models.ExerciseSlug(exName)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: exercise %q has no usable id", ErrInvalid, exName)
		}
		muscle := ex.MuscleGroup
		if muscle == "" {
			muscle = strength.MuscleGroupFor(exName)
		}
		for j, set := range ex.Sets {
			if set.Reps != nil && *set.Reps < 0 {
				return nil, fmt.Errorf("%w: %s set %d has negative reps", ErrInvalid, exName, j+1)
			}
			if set.WeightKg != nil && *set.WeightKg < 0 {
				return nil, fmt.Errorf("%w: %s set %d has negative weight", ErrInvalid, exName, j+1)
			}
		}
		session.Exercises = append(session.Exercises, models.SessionExercise{
			ExerciseID:   id,
			ExerciseName: exName,
			MuscleGroup:  muscle,
			Sets:         ex.Sets,
		})
	}
	return session, nil
}

// ImportSessions replaces the user's sessions from source on the days the
// given sessions cover. Returns replaced session and inserted set counts.
// Cached history is dropped for the exercises of both the removed and the
// imported sessions.
func (s *Service) ImportSessions(ctx context.Context, userID int, source string, sessions []models.Session) (int64, int64, error) {
	if len(sessions) == 0 {
		return 0, 0, nil
	}
	res, err := s.store.ReplaceSessions(ctx, userID, source, sessions)
	if err != nil {
		return 0, 0, err
	}

	if s.cache != nil {
		ids := res.RemovedExercises
		for _, sess := range sessions {
			for _, ex := range sess.Exercises {
				ids = append(ids, ex.ExerciseID)
			}
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				s.cache.Invalidate(userID, id)
			}
		}
	}
	s.metrics.SetsImported(res.SetsInserted)
	return res.SessionsDeleted, res.SetsInserted, nil
}

// SessionRecords computes the PRs of a stored session against the history
// that preceded it.
func (s *Service) SessionRecords(ctx context.Context, userID int, sessionID uuid.UUID) (*records.Result, error) {
	session, err := s.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.computeRecords(ctx, session)
}

// GetSession returns one stored session.
func (s *Service) GetSession(ctx context.Context, userID int, sessionID uuid.UUID) (*models.Session, error) {
	return s.store.GetSession(ctx, userID, sessionID)
}

// DeleteSession removes a stored session. Records of later sessions are
// computed on demand, so they reflect the deletion on the next request.
func (s *Service) DeleteSession(ctx context.Context, userID int, sessionID uuid.UUID) error {
	session, err := s.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, userID, sessionID); err != nil {
		return err
	}
	s.invalidate(userID, session.Exercises)
	return nil
}

// Exercises returns the exercise catalog.
func (s *Service) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return s.store.ListExercises(ctx)
}

// ListSessions returns session headers in [start, end).
func (s *Service) ListSessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionSummary, error) {
	return s.store.ListSessions(ctx, userID, start, end)
}

// StrengthLevels scores the user's best lifts. It returns nil levels when the
// profile is incomplete or no lift has a standard.
func (s *Service) StrengthLevels(ctx context.Context, userID int) (*strength.Levels, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Complete() {
		return nil, nil
	}
	rows, err := s.store.QueryLiftRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return strength.Compute(profile, strength.BuildExerciseData(rows), s.standards), nil
}

// BestLifts returns the user's estimated one-rep max per exercise.
func (s *Service) BestLifts(ctx context.Context, userID int) ([]strength.ExerciseData, error) {
	rows, err := s.store.QueryLiftRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return strength.BuildExerciseData(rows), nil
}

// ExerciseHistory returns stored sets in [start, end) whose exercise name
// contains filter.
func (s *Service) ExerciseHistory(ctx context.Context, userID int, filter string, start, end time.Time) ([]models.ExerciseSetRow, error) {
	return s.store.QueryExerciseSets(ctx, userID, filter, start, end)
}

// Profile returns the user's profile, empty when none was stored.
func (s *Service) Profile(ctx context.Context, userID int) (*models.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// UpdateProfile validates and stores a profile.
func (s *Service) UpdateProfile(ctx context.Context, p models.Profile) error {
	switch p.Gender {
	case "", models.GenderMale, models.GenderFemale:
	default:
		return fmt.Errorf("%w: gender must be %q or %q", ErrInvalid, models.GenderMale, models.GenderFemale)
	}
	if p.WeightKg != nil && *p.WeightKg <= 0 {
		return fmt.Errorf("%w: weight_kg must be positive", ErrInvalid)
	}
	return s.store.UpsertProfile(ctx, p)
}

func (s *Service) computeRecords(ctx context.Context, session *models.Session) (*records.Result, error) {
	start := time.Now()
	result, err := s.engine.ComputeForSession(ctx, session.Context())
	s.metrics.ObserveRecords(time.Since(start).Seconds())
	return result, err
}

func (s *Service) invalidate(userID int, exercises []models.SessionExercise) {
	if s.cache == nil {
		return
	}
	for _, ex := range exercises {
		s.cache.Invalidate(userID, ex.ExerciseID)
	}
}
