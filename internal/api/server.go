package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/auth"
	"github.com/sentinel-agent/sentinel/internal/db"
)

// Runner triggers one full agent run. Wired to the agent by the serve
// command.
type Runner interface {
	Run(ctx context.Context) (any, error)
}

// Embedder turns a search query into a vector for semantic listing.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Server struct {
	Store    *db.Store
	Auth     *auth.Service
	Runner   Runner
	Embedder Embedder
	Echo     *echo.Echo

	log *zap.Logger

	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"` // running, completed, failed
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Result    any        `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func NewServer(store *db.Store, authService *auth.Service, runner Runner, embedder Embedder, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		Store:    store,
		Auth:     authService,
		Runner:   runner,
		Embedder: embedder,
		Echo:     e,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/stats", s.handleGetStats)
	api.POST("/auth/login", s.handleLogin)

	admin := api.Group("/admin")
	admin.Use(s.Auth.Middleware)
	admin.POST("/run", s.handleTriggerRun)
	admin.GET("/run/:id", s.handleJobStatus)
	admin.POST("/cleanup", s.handleCleanup)
}

func (s *Server) Start(port int) error {
	return s.Echo.Start(fmt.Sprintf(":%d", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleLogin(c echo.Context) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	token, err := s.Auth.Login(req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	params := db.ListParams{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Kind:     c.QueryParam("kind"),
		Account:  c.QueryParam("account"),
	}
	if v := c.QueryParam("min_score"); v != "" {
		if score, err := strconv.ParseFloat(v, 64); err == nil && score > 0 {
			params.MinScore = score
		}
	}
	if v := c.QueryParam("days"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			params.Since = time.Now().UTC().AddDate(0, 0, -days)
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}

	// Semantic ordering is best effort: a failed embedding falls back
	// to substring search on the same query.
	if params.Query != "" && c.QueryParam("semantic") == "true" && s.Embedder != nil {
		vec, err := s.Embedder.GenerateEmbedding(c.Request().Context(), params.Query)
		if err != nil {
			s.log.Warn("query embedding failed, using text search", zap.Error(err))
		} else {
			params.QueryEmbedding = vec
		}
	}

	result, err := s.Store.ListRecords(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	rec, err := s.Store.GetRecord(c.Request().Context(), c.Param("id"))
	if err == db.ErrNotFound {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleTriggerRun(c echo.Context) error {
	if s.Runner == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Runner is not configured"})
	}

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := *s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, job)
	}
	job := &backgroundJob{
		ID:        uuid.NewString(),
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	s.runningJob = job
	// Snapshot before unlocking: the goroutine below mutates job under
	// jobMu, so the response must not read the shared struct.
	snapshot := *job
	s.jobMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		result, err := s.Runner.Run(ctx)

		s.jobMu.Lock()
		defer s.jobMu.Unlock()
		now := time.Now().UTC()
		job.EndedAt = &now
		if err != nil {
			job.Status = "failed"
			job.Error = err.Error()
			s.log.Error("background run failed", zap.String("job", job.ID), zap.Error(err))
			return
		}
		job.Status = "completed"
		job.Result = result
	}()

	return c.JSON(http.StatusAccepted, snapshot)
}

func (s *Server) handleJobStatus(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob == nil || s.runningJob.ID != c.Param("id") {
		s.jobMu.Unlock()
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown job"})
	}
	job := *s.runningJob
	s.jobMu.Unlock()
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleCleanup(c echo.Context) error {
	days := 30
	if v := c.QueryParam("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	deleted, err := s.Store.Cleanup(c.Request().Context(), days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}
