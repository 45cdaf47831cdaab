// Package http exposes stored rig definitions over a small REST surface:
// upload, fetch, list, delete, and a structural split of a stored system.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
	"github.com/aretw0/shaperig/pkg/ports"
	"github.com/aretw0/shaperig/pkg/schema"
)

// Server serves definitions out of a DefinitionStore.
type Server struct {
	store ports.DefinitionStore

	saves  *prometheus.CounterVec
	loads  *prometheus.CounterVec
	splits prometheus.Counter
}

// NewHandler creates the HTTP handler over the given store. Metrics are
// registered on a private registry and served under /metrics.
func NewHandler(store ports.DefinitionStore) http.Handler {
	s := &Server{
		store: store,
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shaperig_definition_saves_total",
				Help: "Total number of definitions saved",
			},
			[]string{"system"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shaperig_definition_loads_total",
				Help: "Total number of definitions fetched",
			},
			[]string{"system"},
		),
		splits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shaperig_splits_total",
				Help: "Total number of split operations served",
			},
		),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(s.saves, s.loads, s.splits)

	r := chi.NewRouter()
	r.Get("/systems", s.listSystems)
	r.Put("/systems/{name}", s.saveSystem)
	r.Get("/systems/{name}", s.getSystem)
	r.Delete("/systems/{name}", s.deleteSystem)
	r.Post("/systems/{name}/split", s.splitSystem)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) listSystems(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// saveSystem validates the payload before storing it; a malformed or
// inconsistent definition is rejected with the per-section errors.
func (s *Server) saveSystem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := schema.Parse(raw); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		details := []string{}
		for _, ve := range schema.ValidationErrors(err) {
			details = append(details, ve.Error())
		}
		if len(details) == 0 {
			details = append(details, err.Error())
		}
		json.NewEncoder(w).Encode(map[string]any{"errors": details})
		return
	}

	if err := s.store.Save(r.Context(), name, raw); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}
	s.saves.WithLabelValues(name).Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSystem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	definition, err := s.store.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, ports.ErrDefinitionNotFound) {
			http.Error(w, "System not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}
	s.loads.WithLabelValues(name).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Write(definition)
}

func (s *Server) deleteSystem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// splitSystem loads a stored definition into a detached system, runs the
// symmetry split, and returns the split definition without storing it.
// The split is structural: names, controllers and graph topology; vertex
// reweighting needs a real host and happens client-side.
func (s *Server) splitSystem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	definition, err := s.store.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, ports.ErrDefinitionNotFound) {
			http.Error(w, "System not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}

	system := domain.NewSimplex(name, memory.NewHost(nil), nil)
	if err := system.LoadJSON(definition, true, nil); err != nil {
		http.Error(w, fmt.Sprintf("Definition error: %v", err), http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	split, err := system.Split(func() bool { return ctx.Err() == nil })
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotSplittable) {
			status = http.StatusConflict
		}
		http.Error(w, fmt.Sprintf("Split error: %v", err), status)
		return
	}

	out, err := split.Dump()
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		return
	}
	s.splits.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("encode error: %v\n", err)
	}
}
