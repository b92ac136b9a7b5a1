package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
	"github.com/zoonmattau/budgeter-sub000/internal/payoff"
)

// snapshotOnce plans the stored debts with the configured settings and
// records the result as a projection.
func (s *Service) snapshotOnce(ctx context.Context) {
	p, err := s.project(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastSnapshotAt = s.now()
		s.mu.Unlock()
		s.metrics.snapshots.WithLabelValues("error").Inc()
		slog.Error("snapshot failed", "error", err)
		s.publishEvent(Event{Type: EventError, Error: "snapshot: " + err.Error()})
		return
	}
	s.metrics.snapshots.WithLabelValues("ok").Inc()
	s.recordSnapshot(p)
	slog.Info("snapshot recorded", "id", p.ID, "months", p.Months, "wont_payoff", p.WontPayoff)
}

func (s *Service) project(ctx context.Context) (model.Projection, error) {
	debts, err := s.cfg.Store.ListDebts(ctx)
	if err != nil {
		return model.Projection{}, err
	}

	now := s.now()
	sched := payoff.Simulate(payoff.Plan{
		Debts:        debts,
		ExtraPayment: s.cfg.ExtraPayment,
		Strategy:     s.cfg.Strategy,
		MaxMonths:    s.cfg.MaxMonths,
	})
	s.metrics.observeSchedule(string(s.cfg.Strategy), sched.WontPayoff)

	p := ProjectionOf(sched, debts, now)
	id, err := s.cfg.Store.RecordProjection(ctx, p)
	if err != nil {
		return model.Projection{}, err
	}
	p.ID = id
	return p, nil
}

// ProjectionOf summarizes a schedule for storage.
func ProjectionOf(sched model.Schedule, debts []model.Debt, at time.Time) model.Projection {
	p := model.Projection{
		RecordedAt:    at,
		Strategy:      sched.Strategy,
		ExtraPayment:  sched.ExtraPayment,
		TotalBalance:  model.TotalBalance(debts),
		Months:        sched.Len(),
		TotalInterest: sched.Last().CumulativeInterest,
		WontPayoff:    sched.WontPayoff,
	}
	if !sched.WontPayoff {
		p.DebtFreeDate = payoff.DebtFreeDate(at, sched.Len())
	}
	return p
}

// recordSnapshot updates status and publishes an event when the projection
// moved since the previous snapshot.
func (s *Service) recordSnapshot(p model.Projection) {
	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.lastProjection
	s.lastProjection = &p
	s.lastSnapshotAt = p.RecordedAt
	s.snapshotCount++
	s.lastError = ""

	if prev == nil {
		ev = Event{Type: EventSnapshot, Timestamp: p.RecordedAt, Projection: &p}
		publish = true
	} else if delta := diffProjections(*prev, p); !delta.isZero() {
		ev = Event{Type: EventProjectionDelta, Timestamp: p.RecordedAt, Projection: &p, Delta: &delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func diffProjections(prev, curr model.Projection) Delta {
	return Delta{
		TotalBalance:  curr.TotalBalance - prev.TotalBalance,
		Months:        curr.Months - prev.Months,
		TotalInterest: curr.TotalInterest - prev.TotalInterest,
	}
}

// loadLastProjection primes status from the store so a restart does not
// publish a spurious first snapshot.
func (s *Service) loadLastProjection(ctx context.Context) {
	if s.cfg.Store == nil {
		return
	}
	p, err := s.cfg.Store.LatestProjection(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.lastProjection == nil {
		s.lastProjection = &p
		s.lastSnapshotAt = p.RecordedAt
	}
	s.mu.Unlock()
}
