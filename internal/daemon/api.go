package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/cache"
	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"
	"github.com/zoonmattau/budgeter-sub000/internal/source"
)

const maxBodyBytes = 1 << 20

// PlanRequest is the body of POST /v1/plan.
type PlanRequest struct {
	Debts        []model.Debt `json:"debts"`
	ExtraPayment float64      `json:"extra_payment"`
	Strategy     string       `json:"strategy,omitempty"`
	MaxMonths    int          `json:"max_months,omitempty"`
}

// PlanResponse is returned by POST /v1/plan.
type PlanResponse struct {
	Summary      model.Summary  `json:"summary"`
	PayoffTime   string         `json:"payoff_time,omitempty"`
	DebtFreeDate string         `json:"debt_free_date,omitempty"`
	Schedule     model.Schedule `json:"schedule"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	Debts        []model.Debt `json:"debts"`
	ExtraPayment float64      `json:"extra_payment"`
	MaxMonths    int          `json:"max_months,omitempty"`
}

// CompareResponse is returned by POST /v1/compare.
type CompareResponse struct {
	Comparison  model.Comparison `json:"comparison"`
	Recommended model.Strategy   `json:"recommended"`
	Savings     model.Savings    `json:"savings"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.duration.WithLabelValues("plan").Observe(time.Since(start).Seconds()) }()
	s.countRequest()

	var req PlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "plan", err)
		return
	}
	strategy := s.cfg.Strategy
	if req.Strategy != "" {
		parsed, err := model.ParseStrategy(req.Strategy)
		if err != nil {
			s.fail(w, http.StatusBadRequest, "plan", err)
			return
		}
		strategy = parsed
	}
	req.Strategy = string(strategy)
	if req.MaxMonths <= 0 {
		req.MaxMonths = s.cfg.MaxMonths
	}

	info := RequestInfo{Strategy: strategy, ExtraPayment: req.ExtraPayment, Debts: len(req.Debts)}
	hit, ok := s.cached(w, r, "plan", req, func() any {
		sched := payoff.Simulate(payoff.Plan{
			Debts:        req.Debts,
			ExtraPayment: req.ExtraPayment,
			Strategy:     strategy,
			MaxMonths:    req.MaxMonths,
		})
		s.metrics.observeSchedule(string(strategy), sched.WontPayoff)
		info.Months, info.WontPayoff = sched.Len(), sched.WontPayoff

		resp := PlanResponse{
			Summary:  payoff.Summarize(sched),
			Schedule: sched,
		}
		if !sched.WontPayoff {
			resp.PayoffTime = payoff.FormatPayoffTime(sched.Len())
			resp.DebtFreeDate = payoff.DebtFreeDate(s.now(), sched.Len()).Format("2006-01")
		}
		return resp
	})
	if ok {
		info.Cached = hit
		s.publishEvent(Event{Type: EventPlan, Request: &info})
	}
}

func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.duration.WithLabelValues("compare").Observe(time.Since(start).Seconds()) }()
	s.countRequest()

	var req CompareRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "compare", err)
		return
	}
	if req.MaxMonths <= 0 {
		req.MaxMonths = s.cfg.MaxMonths
	}

	info := RequestInfo{ExtraPayment: req.ExtraPayment, Debts: len(req.Debts)}
	hit, ok := s.cached(w, r, "compare", req, func() any {
		c := payoff.CompareN(req.Debts, req.ExtraPayment, req.MaxMonths)
		s.metrics.observeSchedule(string(model.Avalanche), c.Avalanche.WontPayoff)
		s.metrics.observeSchedule(string(model.Snowball), c.Snowball.WontPayoff)

		best := payoff.Recommended(c)
		chosen := c.Avalanche
		if best == model.Snowball {
			chosen = c.Snowball
		}
		info.Strategy, info.Months, info.WontPayoff = best, chosen.Months, chosen.WontPayoff
		return CompareResponse{
			Comparison:  c,
			Recommended: best,
			Savings:     payoff.ComputeSavings(req.Debts, req.ExtraPayment, best, req.MaxMonths),
		}
	})
	if ok {
		info.Cached = hit
		s.publishEvent(Event{Type: EventCompare, Request: &info})
	}
}

// fail writes an error response and publishes it as an error event.
func (s *Service) fail(w http.ResponseWriter, code int, namespace string, err error) {
	writeJSON(w, code, errorBody{err.Error()})
	s.publishEvent(Event{Type: EventError, Error: namespace + ": " + err.Error()})
}

// cached serves the stored response for req if present, otherwise computes,
// stores and writes it. It reports whether the response came from the cache
// and whether a response body was written at all.
func (s *Service) cached(w http.ResponseWriter, r *http.Request, namespace string, req any, compute func() any) (hit, ok bool) {
	key, err := cache.Key(namespace, req)
	if err != nil {
		s.fail(w, http.StatusBadRequest, namespace, err)
		return false, false
	}

	if data, found := s.cfg.Cache.Get(r.Context(), key); found {
		s.metrics.cacheHits.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(data)
		return true, true
	}
	s.metrics.cacheMisses.Inc()

	data, err := json.Marshal(compute())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, namespace, err)
		return false, false
	}
	data = append(data, '\n')
	if err := s.cfg.Cache.Set(r.Context(), key, data); err != nil {
		slog.Warn("cache store failed", "namespace", namespace, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(data)
	return false, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body over %d bytes", maxBodyBytes)
		}
		return fmt.Errorf("decoding request: %w", err)
	}

	var debts *[]model.Debt
	switch req := v.(type) {
	case *PlanRequest:
		debts = &req.Debts
	case *CompareRequest:
		debts = &req.Debts
	}
	if debts != nil {
		if err := source.Normalize(*debts); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) countRequest() {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()
}
