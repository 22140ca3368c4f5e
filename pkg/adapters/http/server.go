package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	htn "github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/presentation/graph"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/schema"
	"github.com/aretw0/htn/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes an Engine and its persisted agents over HTTP.
type Server struct {
	Engine   *htn.Engine
	Sessions *session.Manager
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine *htn.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tree", s.GetTree)
	r.Get("/tree/graph", s.GetGraph)
	r.Get("/tree/schema", s.GetSchema)
	r.Post("/plan", s.Plan)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/agents", func(r chi.Router) {
		r.Get("/", s.ListAgents)
		r.Get("/{agentID}", s.GetAgent)
		r.Put("/{agentID}", s.PutAgent)
		r.Delete("/{agentID}", s.DeleteAgent)
		r.Post("/{agentID}/run", s.RunAgent)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PlanRequest is the body of POST /plan and PUT /agents/{id}.
type PlanRequest struct {
	State domain.State `json:"state,omitempty"`
}

// PlanResponse describes a planning outcome.
type PlanResponse struct {
	Found          bool             `json:"found"`
	PlanID         string           `json:"plan_id,omitempty"`
	Tasks          []string         `json:"tasks"`
	Explored       int              `json:"explored"`
	PredictedState domain.State     `json:"predicted_state,omitempty"`
	Changes        domain.StateDiff `json:"changes"`
}

// RunResponse describes a plan executed for a persisted agent.
type RunResponse struct {
	PlanResponse
	State      domain.State `json:"state"`
	Error      string       `json:"error,omitempty"`
	FailedStep *int         `json:"failed_step,omitempty"`
}

// NewPlanResponse describes p; a nil plan is reported as not found.
func NewPlanResponse(p *htn.Plan) PlanResponse {
	if p == nil {
		return PlanResponse{Tasks: []string{}}
	}
	return PlanResponse{
		Found:          true,
		PlanID:         p.ID,
		Tasks:          p.Names(),
		Explored:       p.Explored,
		PredictedState: p.PredictedState,
		Changes:        p.Changes(),
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	root, _ := s.Engine.Tree()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "htn-http",
		"version": strings.TrimSpace(htn.Version),
		"tree":    root.Base().Name,
	})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	root, state := s.Engine.Tree()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"root":  domain.Describe(root),
		"state": state,
	})
}

// GetGraph handles the GET /tree/graph request with a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	root, _ := s.Engine.Tree()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(root, nil))
}

// GetSchema handles the GET /tree/schema request. Trees without a schema
// report an empty object.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	sch := s.Engine.Schema()
	if sch == nil {
		sch = schema.Schema{}
	}
	s.writeJSON(w, http.StatusOK, sch)
}

// Plan handles the POST /plan request. The body state replaces the tree's
// initial state when present. An infeasible state answers 404 with found=false.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	plan, err := s.Engine.FindPlan(r.Context(), body.State)
	if err != nil {
		s.fail(w, planStatus(err), "planning failed", err)
		return
	}
	if plan == nil {
		s.logger.Debug("no feasible plan")
		s.writeJSON(w, http.StatusNotFound, NewPlanResponse(nil))
		return
	}
	s.writeJSON(w, http.StatusOK, NewPlanResponse(plan))
}

// ListAgents handles the GET /agents request.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"agents": ids})
}

// GetAgent handles the GET /agents/{agentID} request.
func (s *Server) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAgentNotFound) {
			s.fail(w, http.StatusNotFound, "agent not found", err)
			return
		}
		s.fail(w, http.StatusInternalServerError, "load failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": state})
}

// PutAgent handles the PUT /agents/{agentID} request, replacing the stored state.
func (s *Server) PutAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")
	var body PlanRequest
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.State == nil {
		_, body.State = s.Engine.Tree()
	} else if err := s.Engine.CheckState(body.State); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid state", err)
		return
	}

	var before domain.State
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		prev, err := s.Sessions.Store().Load(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrAgentNotFound) {
			return err
		}
		before = prev
		return s.Sessions.Store().Save(ctx, id, body.State)
	})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "save failed", err)
		return
	}
	s.broadcast(id, domain.Diff(before, body.State))
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": body.State})
}

// DeleteAgent handles the DELETE /agents/{agentID} request.
func (s *Server) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "agentID")); err != nil {
		s.fail(w, http.StatusInternalServerError, "delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunAgent handles the POST /agents/{agentID}/run request: restore the agent,
// plan, execute and persist. Unknown agents start from the tree's initial state.
func (s *Server) RunAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")
	agent, err := s.Engine.NewAgent(nil, htn.WithID(id), htn.WithName(id))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "agent setup failed", err)
		return
	}

	plan, err := s.Sessions.Run(r.Context(), agent)
	resp := RunResponse{PlanResponse: NewPlanResponse(plan), State: agent.Snapshot()}

	var execErr *htn.ExecutionError
	switch {
	case errors.As(err, &execErr):
		resp.Error = execErr.Error()
		resp.FailedStep = &execErr.Index
	case err != nil:
		s.fail(w, planStatus(err), "run failed", err)
		return
	}

	if plan != nil {
		s.broadcast(id, domain.Diff(plan.InitialState, resp.State))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) broadcast(agentID string, diff domain.StateDiff) {
	if diff.IsEmpty() {
		s.logger.Debug("no diff to broadcast", "agent_id", agentID)
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "agent_id", agentID, "err", err)
		return
	}
	s.Streams.Broadcast(agentID, string(data))
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func planStatus(err error) int {
	var evalErr *domain.EvaluationError
	switch {
	case errors.As(err, &evalErr):
		return http.StatusUnprocessableEntity
	case schema.ValidationErrors(err) != nil:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	} else {
		s.logger.Warn(msg, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s: %v", msg, err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
