package site

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

// Comfort bounds accepted for the desired temperature, in °F. Configured
// bounds may narrow this range but never widen it.
const (
	DefaultDesiredMinF = setback.DesiredTempMinF
	DefaultDesiredMaxF = setback.DesiredTempMaxF
)

// Calculator is what a Site needs to refresh its recommendation.
type Calculator interface {
	Calculate(ctx context.Context, req setback.Request) (setback.Result, error)
}

type Snapshot struct {
	SiteID               string
	OutdoorTempF         float64
	DesiredTempF         float64
	DesiredMinF          float64
	DesiredMaxF          float64
	AbsenceDurationHours float64
	DaysPerWeek          int
	Result               setback.Result
	UpdatedAt            time.Time
}

// Site is one configured building with live conditions and the
// recommendation computed for them.
type Site struct {
	mu   sync.RWMutex
	id   string
	req  setback.Request
	min  float64
	max  float64
	res  setback.Result
	at   time.Time
	calc Calculator
	now  func() time.Time
	log  *zap.Logger

	refreshFailures int
}

type Option func(*Site)

// WithComfortBounds narrows the accepted desired temperature range.
func WithComfortBounds(min, max float64) Option {
	return func(s *Site) { s.min, s.max = min, max }
}

// WithLogger reports background refresh failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Site) { s.log = l }
}

// New validates the configured request and computes the first recommendation.
func New(id string, req setback.Request, calc Calculator, opts ...Option) (*Site, error) {
	s := &Site{
		id:   id,
		req:  req,
		min:  DefaultDesiredMinF,
		max:  DefaultDesiredMaxF,
		calc: calc,
		now:  time.Now,
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := checkBounds(s.min, s.max); err != nil {
		return nil, err
	}
	if err := s.checkDesired(req.Schedule.DesiredTempF); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recompute(s.req); err != nil {
		return nil, fmt.Errorf("site %s: %w", id, err)
	}
	return s, nil
}

func (s *Site) ID() string { return s.id }

func (s *Site) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		SiteID:               s.id,
		OutdoorTempF:         s.req.Schedule.OutdoorTempF,
		DesiredTempF:         s.req.Schedule.DesiredTempF,
		DesiredMinF:          s.min,
		DesiredMaxF:          s.max,
		AbsenceDurationHours: s.req.Schedule.AbsenceDurationHours,
		DaysPerWeek:          s.req.Schedule.DaysPerWeek,
		Result:               s.res,
		UpdatedAt:            s.at,
	}
}

// Request returns a copy of the configured request with the live conditions.
func (s *Site) Request() setback.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.req
}

func (s *Site) SetOutdoorTemperature(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidOutdoorReading
	}
	return s.update(func(r *setback.Request) { r.Schedule.OutdoorTempF = v })
}

func (s *Site) SetDesiredTemperature(v float64) error {
	s.mu.RLock()
	err := s.checkDesired(v)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return s.update(func(r *setback.Request) { r.Schedule.DesiredTempF = v })
}

func (s *Site) SetAbsenceDuration(hours float64) error {
	if !(hours > 0) || math.IsInf(hours, 0) {
		return ErrInvalidAbsence
	}
	return s.update(func(r *setback.Request) { r.Schedule.AbsenceDurationHours = hours })
}

func (s *Site) SetDaysPerWeek(n int) error {
	if n < 1 || n > 7 {
		return ErrInvalidDaysPerWeek
	}
	return s.update(func(r *setback.Request) { r.Schedule.DaysPerWeek = n })
}

// SetComfortBounds changes the accepted desired temperature range. The
// current desired temperature must remain inside it.
func (s *Site) SetComfortBounds(min, max float64) error {
	if err := checkBounds(min, max); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.req.Schedule.DesiredTempF; d < min || d > max {
		return ErrDesiredOutOfRange
	}
	s.min, s.max = min, max
	return nil
}

// Refresh recomputes the recommendation for unchanged conditions.
func (s *Site) Refresh() error {
	return s.update(func(*setback.Request) {})
}

// RefreshFailures counts background refreshes that kept the previous
// recommendation because recomputing failed.
func (s *Site) RefreshFailures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshFailures
}

// Run refreshes the recommendation every interval until ctx is done.
func (s *Site) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refreshOnce()
		}
	}
}

func (s *Site) refreshOnce() {
	err := s.Refresh()
	if err == nil {
		return
	}
	s.mu.Lock()
	s.refreshFailures++
	n := s.refreshFailures
	stale := s.at
	s.mu.Unlock()
	s.log.Warn("site refresh failed, keeping previous recommendation",
		zap.String("site_id", s.id),
		zap.Int("failures", n),
		zap.Time("computed_at", stale),
		zap.Error(err),
	)
}

func checkBounds(min, max float64) error {
	if !(min <= max) || min < DefaultDesiredMinF || max > DefaultDesiredMaxF {
		return fmt.Errorf("%w: [%v, %v] must lie within [%v, %v]",
			ErrInvalidComfortBounds, min, max, DefaultDesiredMinF, DefaultDesiredMaxF)
	}
	return nil
}

func (s *Site) checkDesired(v float64) error {
	if v < s.min || v > s.max {
		return fmt.Errorf("%w: %.1f not within [%.1f, %.1f]", ErrDesiredOutOfRange, v, s.min, s.max)
	}
	return nil
}

// update applies mutate to a copy and commits it only if the new
// recommendation can be computed.
func (s *Site) update(mutate func(*setback.Request)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.req
	mutate(&next)
	return s.recompute(next)
}

// recompute requires s.mu held for writing.
func (s *Site) recompute(req setback.Request) error {
	req.Schedule.AbsenceStart = nextOccurrence(s.now(), req.Schedule.AbsenceStart)
	res, err := s.calc.Calculate(context.Background(), req)
	if err != nil {
		return err
	}
	s.req = req
	s.res = res
	s.at = s.now()
	return nil
}

// nextOccurrence places the clock time of start on the next day it has not
// yet passed, relative to now.
func nextOccurrence(now, start time.Time) time.Time {
	loc := now.Location()
	t := time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, loc)
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
