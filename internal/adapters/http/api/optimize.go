package api

import (
	"net/http"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
)

// OptimizeHandler handles synchronous runs and job submissions.
type OptimizeHandler struct {
	deps Dependencies
}

// NewOptimizeHandler creates a new optimize handler.
func NewOptimizeHandler(deps Dependencies) *OptimizeHandler {
	return &OptimizeHandler{deps: deps}
}

type submitResponse struct {
	RunID     string `json:"runId"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleOptimize handles POST /optimize: the run executes within the
// request and the stored run, result included, is returned.
func (h *OptimizeHandler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "api.optimize"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeRequest(w, r)
	if err != nil {
		status, code := statusFor(WrapKind(op, ErrBadRequest, err))
		writeError(w, status, code, err)
		return
	}

	run, err := h.deps.Optimize(r.Context(), req)
	if err != nil {
		status, code := statusFor(err)
		writeRunError(w, status, code, run.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleSubmit handles POST /jobs: the run is queued and its id returned.
// Resubmitting a requestId returns the original run.
func (h *OptimizeHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeRequest(w, r)
	if err != nil {
		status, code := statusFor(WrapKind(op, ErrBadRequest, err))
		writeError(w, status, code, err)
		return
	}

	runID, duplicate, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, submitResponse{RunID: runID, Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{RunID: runID, Status: string(repository.StatusPending)})
}
