// Package gamesapi is a small in-memory HTTP API used to exercise the rest
// client in tests, benchmarks and the serve command.
package gamesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Game is the resource served under /api/games.
type Game struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Todo is the record served by the benchmark endpoint.
type Todo struct {
	UserID    int    `json:"userId"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Seed is the record every new Server starts with.
var Seed = Game{ID: 1, Title: "elden ring"}

// Server holds the game store, its routes and their metrics.
type Server struct {
	mu    sync.Mutex
	games []Game

	todoDelay time.Duration
	logger    *slog.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mux *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithTodoDelay makes the todos endpoint sleep before answering, to mimic a
// slow backend.
func WithTodoDelay(d time.Duration) Option {
	return func(s *Server) {
		s.todoDelay = d
	}
}

// WithLogger sets the logger that receives one record per request.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server seeded with Seed.
func New(opts ...Option) *Server {
	s := &Server{
		games:    []Game{Seed},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gamesapi",
				Name:      "requests_total",
				Help:      "Total number of requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gamesapi",
				Name:      "request_duration_seconds",
				Help:      "Request latency histogram",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"route"},
		),
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.requests, s.duration)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /api/games", s.fetch)
	s.handle("POST /api/games", s.create)
	s.handle("GET /api/games/{id}", s.get)
	s.handle("PUT /api/games/{id}", s.update)
	s.handle("DELETE /api/games/{id}", s.remove)
	s.handle("PATCH /api/games/{id}", s.get)
	// GET patterns also match HEAD.
	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH"} {
		s.handle(method+" /api/games/return-body", s.echo)
	}
	s.handle("GET /todos/{count}", s.todos)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Registry exposes the server's metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Games returns a snapshot of the store.
func (s *Server) Games() []Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Game(nil), s.games...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	route := pattern
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		elapsed := time.Since(start)
		s.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		s.duration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", elapsed),
		)
	})
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var game *Game
	if len(s.games) > 0 {
		g := s.games[0]
		game = &g
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	game, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodHead {
		s.head(w, game)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// head advertises the length of the record without sending it.
func (s *Server) head(w http.ResponseWriter, game Game) {
	data, _ := json.Marshal(game)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var game Game
	if !readJSON(w, r, &game) {
		return
	}
	s.mu.Lock()
	game.ID = len(s.games) + 1
	s.games = append(s.games, game)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var game Game
	if !readJSON(w, r, &game) {
		return
	}
	game.ID = id

	s.mu.Lock()
	found := id >= 1 && id <= len(s.games)
	if found {
		s.games[id-1] = game
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("game %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// remove answers with the record but keeps it, so ids stay positional.
func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	game, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	var game Game
	if !readJSON(w, r, &game) {
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) todos(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(r.PathValue("count"))
	if err != nil || count < 0 {
		writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
		return
	}
	if s.todoDelay > 0 {
		select {
		case <-time.After(s.todoDelay):
		case <-r.Context().Done():
			return
		}
	}
	todos := make([]Todo, count)
	for i := range todos {
		todos[i] = Todo{
			UserID:    i%10 + 1,
			ID:        i + 1,
			Title:     fmt.Sprintf("todo %d of %d", i+1, count),
			Completed: i%2 == 0,
		}
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (Game, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return Game{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > len(s.games) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("game %d not found", id))
		return Game{}, false
	}
	return s.games[id-1], true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid game: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// ListenAndServe serves s on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
