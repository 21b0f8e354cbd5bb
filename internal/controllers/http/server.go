package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/setback-advisor/internal/metrics"
	"github.com/Agrid-Dev/setback-advisor/internal/ports"
	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
	"github.com/Agrid-Dev/setback-advisor/internal/wire"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type Server struct {
	svc     ports.SiteService
	calc    ports.Calculator
	srv     *http.Server
	metrics *metrics.Collector
	log     *zap.Logger
}

type Option func(*Server)

func WithMetrics(m *metrics.Collector) Option { return func(s *Server) { s.metrics = m } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// New returns a runnable server.
func New(svc ports.SiteService, calc ports.Calculator, addr string, opts ...Option) *Server {
	s := &Server{svc: svc, calc: calc, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.WrapHandler(route, h))
	}

	// Stateless calculations, as posted by the mobile client
	handle("POST /api/calculate", "/api/calculate", s.handleCalculate)
	handle("POST /api/scenario", "/api/scenario", s.handleScenario)

	// Site: read
	handle("GET /v1", "/v1", s.handleGet)

	// Site: one endpoint per variable
	handle("POST /v1/outdoor_temperature", "/v1/outdoor_temperature", s.handlePostOutdoor)
	handle("POST /v1/desired_temperature", "/v1/desired_temperature", s.handlePostDesired)
	handle("POST /v1/absence_duration", "/v1/absence_duration", s.handlePostAbsence)
	handle("POST /v1/days_per_week", "/v1/days_per_week", s.handlePostDaysPerWeek)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- DTOs ----

type snapshotDTO struct {
	SiteID             string          `json:"site_id"`
	OutdoorTemperature float64         `json:"outdoor_temperature"`
	DesiredTemperature float64         `json:"desired_temperature"`
	DesiredMin         float64         `json:"desired_temperature_min"`
	DesiredMax         float64         `json:"desired_temperature_max"`
	AbsenceDuration    float64         `json:"absence_duration"`
	DaysPerWeek        int             `json:"days_per_week"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Recommendation     *wire.ResultDTO `json:"recommendation"`
}

func toDTO(s site.Snapshot) snapshotDTO {
	rec := wire.FromResult(s.Result)
	return snapshotDTO{
		SiteID:             s.SiteID,
		OutdoorTemperature: s.OutdoorTempF,
		DesiredTemperature: s.DesiredTempF,
		DesiredMin:         s.DesiredMinF,
		DesiredMax:         s.DesiredMaxF,
		AbsenceDuration:    s.AbsenceDurationHours,
		DaysPerWeek:        s.DaysPerWeek,
		UpdatedAt:          s.UpdatedAt,
		Recommendation:     &rec,
	}
}

// ---- Handlers ----

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body wire.CalculateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := body.Request()
	if err != nil {
		writeFailure(w, err)
		return
	}
	elig, err := body.FormData.Eligibility()
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.respondCalculation(w, r, req, elig)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var body wire.ScenarioRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := body.Request()
	if err != nil {
		writeFailure(w, err)
		return
	}
	elig, err := body.FormData.Eligibility()
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.respondCalculation(w, r, req, elig)
}

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondSnapshot(w)
}

func (s *Server) handlePostOutdoor(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetOutdoorTemperature)
}

func (s *Server) handlePostDesired(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetDesiredTemperature)
}

func (s *Server) handlePostAbsence(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetAbsenceDuration)
}

func (s *Server) handlePostDaysPerWeek(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetDaysPerWeek)
}

// ---- generic helpers ----

func (s *Server) respondCalculation(w http.ResponseWriter, r *http.Request, req setback.Request, elig *wire.EligibilityDTO) {
	res, err := s.calc.Calculate(r.Context(), req)
	if err != nil {
		if wire.StatusFor(err) == http.StatusInternalServerError {
			s.log.Error("calculation failed", zap.Error(err))
		}
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Success(res).WithEligibility(elig))
}

func (s *Server) respondSnapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, toDTO(s.svc.Get()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, wire.Response{Error: &wire.ErrorDTO{
			Kind:    "invalid_json",
			Message: err.Error(),
		}})
		return false
	}
	return true
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, setback.ErrPhysicallyInfeasible) {
			code = http.StatusUnprocessableEntity
		}
		writeErr(w, code, err.Error())
		return
	}

	s.respondSnapshot(w)
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, wire.StatusFor(err), wire.Failure(err))
}

// writeJSON encodes before writing the status so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		b, _ = json.Marshal(wire.EncodingFailure(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
