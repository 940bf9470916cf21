package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/metrics"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/strength"
	"github.com/claude/ironlog/internal/training"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Training is the subset of training.Service the handlers use.
type Training interface {
	LogSession(ctx context.Context, userID int, in training.NewSession) (*models.Session, *records.Result, error)
	SessionRecords(ctx context.Context, userID int, sessionID uuid.UUID) (*records.Result, error)
	GetSession(ctx context.Context, userID int, sessionID uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, userID int, sessionID uuid.UUID) error
	Exercises(ctx context.Context) ([]models.Exercise, error)
	ListSessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionSummary, error)
	StrengthLevels(ctx context.Context, userID int) (*strength.Levels, error)
	BestLifts(ctx context.Context, userID int) ([]strength.ExerciseData, error)
	ExerciseHistory(ctx context.Context, userID int, filter string, start, end time.Time) ([]models.ExerciseSetRow, error)
	Profile(ctx context.Context, userID int) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) error
}

var _ Training = (*training.Service)(nil)

// Store covers the direct storage access of the server: user identity and
// the import log.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Ingester parses an uploaded export and stores its sessions.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc       Training
	db        Store
	alpha     Ingester
	log       *slog.Logger
	apiKey    string
	devUserID int
	metrics   *metrics.Manager
	gatherer  prometheus.Gatherer
	whois     WhoIser
	mcp       http.Handler
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics instruments requests on m and serves g at /metrics.
func WithMetrics(m *metrics.Manager, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithMCP serves an MCP handler at /api/v1/mcp behind the identity
// middleware. Handlers read the caller with UserIDFromContext.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// WithDevUser sets the user attributed to requests when Tailscale is off.
func WithDevUser(userID int) Option {
	return func(s *Server) { s.devUserID = userID }
}

// New creates a new Server with all routes configured.
func New(svc Training, db Store, alphaProvider Ingester, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		db:        db,
		alpha:     alphaProvider,
		log:       log,
		apiKey:    apiKey,
		devUserID: 1,
		router:    chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// SetTailscale switches request identity from the dev user to the Tailscale
// peer identified by lc.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Instrument(s.metrics))

	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)

		// Ingest endpoints (API key required)
		r.Route("/ingest", func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/alpha", s.handleAlphaIngest)
		})
		r.Get("/imports", s.handleImportLogs)

		r.Post("/sessions", s.handleLogSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Get("/sessions/{id}/records", s.handleSessionRecords)

		r.Get("/strength", s.handleStrengthLevels)
		r.Get("/strength/lifts", s.handleBestLifts)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Get("/exercises", s.handleExercises)
		r.Get("/exercises/sets", s.handleExerciseSets)

		if s.mcp != nil {
			r.Handle("/mcp", s.mcp)
		}
	})
}

// identity resolves the requesting user: the Tailscale peer when tsnet is
// active, otherwise the configured dev user.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(s.devUserID)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db, s.log)(next).ServeHTTP(w, r)
	})
}
