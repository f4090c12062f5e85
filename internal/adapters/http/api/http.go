// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
	service "github.com/joshmont53/SwimTeamOptimizer/internal/app"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/preset"
)

// maxBodyBytes bounds request bodies; rosters are a few thousand rows.
const maxBodyBytes = 16 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Optimize(ctx context.Context, req service.Request) (repository.Run, error)
	Submit(ctx context.Context, req service.Request) (runID string, duplicate bool, err error)
	Run(ctx context.Context, id string) (repository.Run, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	optimizeHandler *OptimizeHandler
	runsHandler     *RunsHandler
	presetsHandler  *PresetsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		optimizeHandler: NewOptimizeHandler(deps),
		runsHandler:     NewRunsHandler(deps),
		presetsHandler:  NewPresetsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/optimize", MetricsMiddleware(s.optimizeHandler.HandleOptimize, "optimize"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.optimizeHandler.HandleSubmit, "jobs"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "runs"))
	mux.HandleFunc("/presets", MetricsMiddleware(s.presetsHandler.HandleListPresets, "presets"))
	mux.HandleFunc("/presets/", MetricsMiddleware(s.presetsHandler.HandleGetPreset, "presets"))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// optimizeRequest is the body of POST /optimize and POST /jobs. Tables are
// carried as CSV text; the other documents keep their file formats.
type optimizeRequest struct {
	RequestID      string          `json:"requestId" validate:"omitempty,max=128,printascii"`
	Roster         string          `json:"roster" validate:"required"`
	Standards      string          `json:"standards"`
	Events         json.RawMessage `json:"events"`
	PreAssignments json.RawMessage `json:"preAssignments"`
	Config         json.RawMessage `json:"config"`
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// decodeRequest reads, validates and parses the request body.
func decodeRequest(w http.ResponseWriter, r *http.Request) (service.Request, error) {
	var body optimizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return service.Request{}, fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(body); err != nil {
		return service.Request{}, err
	}

	roster, err := csvio.ReadRoster(strings.NewReader(body.Roster))
	if err != nil {
		return service.Request{}, err
	}
	req := service.Request{RequestID: body.RequestID, Roster: *roster}

	if strings.TrimSpace(body.Standards) != "" {
		if req.Standards, err = csvio.ReadStandards(strings.NewReader(body.Standards)); err != nil {
			return service.Request{}, err
		}
	}
	if present(body.Events) {
		if req.Events, err = csvio.DecodeDemand(bytes.NewReader(body.Events)); err != nil {
			return service.Request{}, err
		}
	}
	if present(body.PreAssignments) {
		if req.Pins, err = csvio.DecodePins(bytes.NewReader(body.PreAssignments)); err != nil {
			return service.Request{}, err
		}
	}
	if present(body.Config) {
		if req.Config, err = csvio.DecodeRunConfig(bytes.NewReader(body.Config)); err != nil {
			return service.Request{}, err
		}
	}
	return req, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	RunID   string `json:"runId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeRunError(w, status, code, "", err)
}

func writeRunError(w http.ResponseWriter, status int, code, runID string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RunID: runID})
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	var (
		validationErrs validator.ValidationErrors
		rowErr         *csvio.RowError
		maxBytesErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest),
		errors.As(err, &validationErrs),
		errors.As(err, &rowErr),
		errors.Is(err, csvio.ErrInvalidDocument),
		errors.Is(err, csvio.ErrMissingColumn),
		errors.Is(err, csvio.ErrInvalidRow),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, preset.ErrUnknownCompetition):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, engine.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, engine.ErrUnknownSwimmer),
		errors.Is(err, engine.ErrUnknownSlot),
		errors.Is(err, engine.ErrIneligible),
		errors.Is(err, engine.ErrConflict),
		errors.Is(err, engine.ErrCapacity):
		return http.StatusUnprocessableEntity, "invalid_assignment"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
