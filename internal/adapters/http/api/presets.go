package api

import (
	"net/http"
	"strings"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/preset"
)

// PresetsHandler serves the competition presets.
type PresetsHandler struct{}

// NewPresetsHandler creates a new presets handler.
func NewPresetsHandler() *PresetsHandler {
	return &PresetsHandler{}
}

type presetEvent struct {
	Label       string            `json:"label"`
	Event       string            `json:"event"`
	AgeCategory model.AgeCategory `json:"ageCategory"`
	Gender      model.Gender      `json:"gender"`
	IsRelay     bool              `json:"isRelay"`
}

type presetResponse struct {
	preset.Preset
	Events []presetEvent `json:"events"`
}

// HandleListPresets handles GET /presets.
func (h *PresetsHandler) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"competitionTypes": preset.Types()})
}

// HandleGetPreset handles GET /presets/{competitionType}.
func (h *PresetsHandler) HandleGetPreset(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_preset"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/presets/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	p, err := preset.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}

	resp := presetResponse{Preset: p, Events: make([]presetEvent, 0, len(p.Events))}
	for _, s := range p.Events {
		resp.Events = append(resp.Events, presetEvent{
			Label:       s.Label(),
			Event:       s.Event,
			AgeCategory: s.Age,
			Gender:      s.Gender,
			IsRelay:     s.Relay,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
