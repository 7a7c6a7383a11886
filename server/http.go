package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// HTTPServer serves health, metrics and job inspection endpoints.
type HTTPServer struct {
	queue    *jobqueue.Queue
	gatherer prometheus.Gatherer
	log      *slog.Logger
	leader   LeaderStatus
}

// LeaderStatus reports whether this process currently holds the maintenance
// lock. *jobqueue.LeaderElector implements it.
type LeaderStatus interface {
	IsLeader() bool
}

// WithLeader makes /healthz report the process's leadership.
func (s *HTTPServer) WithLeader(l LeaderStatus) *HTTPServer {
	s.leader = l
	return s
}

// NewHTTPServer returns the ops server. A nil gatherer serves the default
// Prometheus registry.
func NewHTTPServer(q *jobqueue.Queue, gatherer prometheus.Gatherer, log *slog.Logger) *HTTPServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.Default()
	}
	return &HTTPServer{queue: q, gatherer: gatherer, log: log}
}

func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestSize(1 << 20))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/stats", s.stats)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.listJobs)
		r.Post("/", s.enqueue)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getJob)
			r.Post("/requeue", s.requeue)
		})
	})
	return r
}

// NewServer wraps the handler with the timeouts every listener gets.
func (s *HTTPServer) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
	Leader *bool  `json:"leader,omitempty"`
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.leader != nil {
		leading := s.leader.IsLeader()
		resp.Leader = &leading
	}

	if err := s.queue.Ping(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "healthz: store ping failed", "error", err)
		resp.Status, resp.DB = "degraded", "unavailable"
		s.writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *HTTPServer) stats(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	c, err := s.queue.Counts(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, jobqueue.NewStatsView(name, c))
}

func (s *HTTPServer) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{
		Name:          q.Get("name"),
		ErrorContains: q.Get("error"),
		IncludeArgs:   q.Get("args") == "true",
	}

	var err error
	if v := q.Get("state"); v != "" {
		if f.State, err = model.ParseState(v); err != nil {
			s.writeStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	if f.Sort, err = store.ParseSort(q.Get("sort")); err != nil {
		s.writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		s.writeStatus(w, r, http.StatusBadRequest, "limit: "+err.Error())
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		s.writeStatus(w, r, http.StatusBadRequest, "offset: "+err.Error())
		return
	}

	jobs, err := s.queue.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, jobqueue.NewJobViews(jobs))
}

type enqueueRequest struct {
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args"`
	Retries    *int            `json:"retries"`
	StartAfter *time.Time      `json:"start_after"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (s *HTTPServer) enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeStatus(w, r, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	id, err := s.queue.Enqueue(r.Context(), req.Name, req.Args, &jobqueue.EnqueueOptions{
		StartAfter: req.StartAfter,
		Retries:    req.Retries,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, idResponse{ID: id})
}

func (s *HTTPServer) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	j, err := s.queue.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, jobqueue.NewJobView(j))
}

func (s *HTTPServer) requeue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	newID, err := s.queue.Requeue(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, idResponse{ID: newID})
}

func (s *HTTPServer) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeStatus(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("must be a non-negative integer")
	}
	return n, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, jobqueue.ErrInvalidJob):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, jobqueue.ErrNotDead):
		code = http.StatusConflict
	case errors.Is(err, jobqueue.ErrStoreUnavailable):
		code = http.StatusServiceUnavailable
	}
	if code >= 500 {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.writeStatus(w, r, code, err.Error())
}

func (s *HTTPServer) writeStatus(w http.ResponseWriter, r *http.Request, code int, msg string) {
	s.writeJSON(w, r, code, errorResponse{Error: msg})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
