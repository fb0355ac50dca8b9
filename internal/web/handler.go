package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/metrics"
	"ai-date-planner/internal/planner"
	"ai-date-planner/internal/shared"

	"github.com/go-chi/chi/v5"
)

// PlanService runs the full planning pipeline. *planner.Planner
// satisfies it.
type PlanService interface {
	PlanDate(ctx context.Context, userRequest string) (*planner.Outcome, []shared.AgentMeta, error)
}

// Handler serves the JSON API around the planning pipeline.
type Handler struct {
	svc          PlanService
	validator    *dateplan.Validator
	metricsStore *metrics.Store
	startTime    time.Time
}

func NewHandler(svc PlanService, validator *dateplan.Validator, metricsStore *metrics.Store) *Handler {
	return &Handler{
		svc:          svc,
		validator:    validator,
		metricsStore: metricsStore,
		startTime:    time.Now(),
	}
}

// RegisterRoutes mounts the API on the shared router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/plan", h.HandlePlan)
	r.Get("/api/cities", h.HandleCities)
	r.Get("/api/metrics", h.HandleMetrics)
	r.Get("/health", h.HandleHealth)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// HandlePlan runs the pipeline for a free-text date request and returns
// the full outcome: the validated plan, fetched data, verification, and
// the generated plan text.
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Request string `json:"request"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if strings.TrimSpace(payload.Request) == "" {
		writeError(w, http.StatusBadRequest, "missing request")
		return
	}

	log.Printf("Planning date for request: %s", payload.Request)

	outcome, metas, err := h.svc.PlanDate(r.Context(), payload.Request)
	for _, m := range metas {
		h.metricsStore.RecordMeta(m)
	}
	if err != nil {
		log.Printf("Error planning date: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to plan date")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// HandleCities lists the supported cities in display casing.
func (h *Handler) HandleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cities":  h.validator.DisplayCities(),
		"default": h.validator.DefaultCity(),
	})
}

// HandleMetrics reports recent LLM usage and process health.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"daily_usage": h.metricsStore.GetDailyUsage(7),
		"agent_usage": h.metricsStore.GetAgentUsage(),
		"system":      metrics.GetSysHealth(h.startTime),
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
