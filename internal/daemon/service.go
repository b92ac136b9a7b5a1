// Package daemon provides the long-running debt plan HTTP service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/zoonmattau/budgeter-sub000/internal/cache"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

// Store is the persistence the scheduled snapshot job needs.
type Store interface {
	ListDebts(ctx context.Context) ([]model.Debt, error)
	RecordProjection(ctx context.Context, p model.Projection) (int64, error)
	LatestProjection(ctx context.Context) (model.Projection, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	SnapshotCron string // empty disables scheduled snapshots
	Strategy     model.Strategy
	ExtraPayment float64
	MaxMonths    int
	EventsBuffer int

	Store Store       // optional
	Cache cache.Cache // optional; defaults to an in-memory cache
}

// Event types published on /v1/events and /v1/stream.
const (
	EventSnapshot        = "snapshot"
	EventProjectionDelta = "projection_delta"
	EventPlan            = "plan"
	EventCompare         = "compare"
	EventError           = "error"
)

// Event is emitted when a snapshot records a new projection, when a plan or
// compare request is served, and when a request or snapshot fails.
type Event struct {
	ID         int64             `json:"id"`
	Type       string            `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Projection *model.Projection `json:"projection,omitempty"`
	Delta      *Delta            `json:"delta,omitempty"`
	Request    *RequestInfo      `json:"request,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// RequestInfo describes a served plan or compare request.
type RequestInfo struct {
	Strategy     model.Strategy `json:"strategy,omitempty"`
	ExtraPayment float64        `json:"extra_payment"`
	Debts        int            `json:"debts"`
	Cached       bool           `json:"cached"`
	Months       int            `json:"months,omitempty"`
	WontPayoff   bool           `json:"wont_payoff,omitempty"`
}

// Delta captures projection changes between snapshots.
type Delta struct {
	TotalBalance  float64 `json:"total_balance"`
	Months        int     `json:"months"`
	TotalInterest float64 `json:"total_interest"`
}

func (d Delta) isZero() bool {
	return d.TotalBalance == 0 && d.Months == 0 && d.TotalInterest == 0
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time         `json:"started_at"`
	Strategy        model.Strategy    `json:"strategy"`
	ExtraPayment    float64           `json:"extra_payment"`
	SnapshotCron    string            `json:"snapshot_cron,omitempty"`
	LastSnapshotAt  time.Time         `json:"last_snapshot_at"`
	SnapshotCount   int64             `json:"snapshot_count"`
	LastProjection  *model.Projection `json:"last_projection,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
	Requests        int64             `json:"requests"`
	EventCount      int               `json:"event_count"`
	SubscriberCount int               `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	metrics *metrics
	now     func() time.Time

	mu             sync.RWMutex
	startedAt      time.Time
	lastSnapshotAt time.Time
	snapshotCount  int64
	requests       int64
	lastError      string
	lastProjection *model.Projection
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8740"
	}
	if cfg.Strategy == "" {
		cfg.Strategy = model.Avalanche
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory(5*time.Minute, 1024)
	}

	return &Service{
		cfg:       cfg,
		metrics:   newMetrics(),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("POST /v1/plan", s.handlePlan)
	mux.HandleFunc("POST /v1/compare", s.handleCompare)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves HTTP and runs scheduled snapshots until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.loadLastProjection(ctx)

	sched := cron.New()
	if s.cfg.Store != nil && s.cfg.SnapshotCron != "" {
		if _, err := sched.AddFunc(s.cfg.SnapshotCron, func() { s.snapshotOnce(ctx) }); err != nil {
			_ = server.Close()
			return fmt.Errorf("register snapshot job %q: %w", s.cfg.SnapshotCron, err)
		}
		// Seed an initial snapshot so status is useful immediately.
		go s.snapshotOnce(ctx)
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	slog.Info("daemon started", "addr", s.cfg.Addr, "snapshot_cron", s.cfg.SnapshotCron)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// publishEvent stores ev in the ring buffer and fans it out to stream
// subscribers. A zero ID or timestamp is filled in.
func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	if ev.ID == 0 {
		s.nextEventID++
		ev.ID = s.nextEventID
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Strategy:        s.cfg.Strategy,
		ExtraPayment:    s.cfg.ExtraPayment,
		SnapshotCron:    s.cfg.SnapshotCron,
		LastSnapshotAt:  s.lastSnapshotAt,
		SnapshotCount:   s.snapshotCount,
		LastProjection:  s.lastProjection,
		LastError:       s.lastError,
		Requests:        s.requests,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	if p := s.status().LastProjection; p != nil {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.now(), Projection: p})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
