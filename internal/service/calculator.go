package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/setback-advisor/internal/metrics"
	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

type requestIDKey struct{}

// WithRequestID attaches a caller-chosen id to the calculations run with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Calculator runs the engine for transports, adding request ids, logs and
// metrics. It implements ports.Calculator.
type Calculator struct {
	engine  *setback.Engine
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

func NewCalculator(engine *setback.Engine, log *zap.Logger, m *metrics.Collector) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{engine: engine, log: log, metrics: m, now: time.Now}
}

func (c *Calculator) Calculate(ctx context.Context, req setback.Request) (setback.Result, error) {
	if err := ctx.Err(); err != nil {
		return setback.Result{}, err
	}
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	log := c.log.With(zap.String("request_id", id))

	start := c.now()
	res, err := c.engine.Calculate(req)
	elapsed := c.now().Sub(start)
	if err != nil {
		kind := setback.ErrorKind(err)
		c.metrics.ObserveError(kind)
		log.Info("calculation rejected", zap.String("kind", kind), zap.Error(err))
		return setback.Result{}, err
	}

	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = string(w)
	}
	c.metrics.ObserveCalculation(res.Action.String(), warnings, elapsed)
	log.Debug("calculation done",
		zap.Stringer("action", res.Action),
		zap.Float64("tau_hours", res.ThermalTimeConstantHours),
		zap.Float64("break_even_hours", res.BreakEvenTimeHours),
		zap.Float64("setback_temp_f", res.SetbackTempF),
		zap.Strings("warnings", warnings),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}
