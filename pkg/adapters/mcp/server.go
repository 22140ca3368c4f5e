package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htn "github.com/aretw0/htn"
	"github.com/aretw0/htn/internal/presentation/graph"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	treeURI  = "htn://tree"
	graphURI = "htn://graph"
)

// PlanResult aligns with the HTTP adapter and provides a unified structure across adapters.
// States use the kind-preserving JSON encoding of domain.State.
type PlanResult struct {
	Found          bool           `json:"found" jsonschema_description:"Whether a feasible plan exists"`
	Tasks          []string       `json:"tasks" jsonschema_description:"Primitive task names in execution order"`
	Explored       int            `json:"explored" jsonschema_description:"Number of tasks visited while planning"`
	PredictedState map[string]any `json:"predicted_state,omitempty" jsonschema_description:"State expected after the plan"`
	State          map[string]any `json:"state,omitempty" jsonschema_description:"Live state after execution"`
	Error          string         `json:"error,omitempty" jsonschema_description:"Why execution stopped early"`
}

// Server wraps an Engine and exposes it as an MCP Server.
type Server struct {
	engine    *htn.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. sessions may be nil, in which
// case the agent tools are not registered.
func NewServer(engine *htn.Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("htn-mcp", strings.TrimSpace(htn.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("find_plan",
		mcp.WithDescription("Find a plan for the loaded task tree. If state is omitted, plans from the tree's initial state."),
		mcp.WithString("state", mcp.Description("JSON object of world state entries (optional)")),
		mcp.WithOutputSchema[PlanResult](),
	), mcp.NewStructuredToolHandler(s.handleFindPlan))

	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the task tree outline and its initial state."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.treeJSON()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the task tree as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, _ := s.engine.Tree()
		return mcp.NewToolResultText(graph.GenerateMermaid(root, nil)), nil
	})

	if s.sessions == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("run_agent",
		mcp.WithDescription("Restore a persisted agent, plan, execute the plan and persist the resulting state."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identity")),
		mcp.WithOutputSchema[PlanResult](),
	), mcp.NewStructuredToolHandler(s.handleRunAgent))

	s.mcpServer.AddTool(mcp.NewTool("get_agent",
		mcp.WithDescription("Read the persisted state of an agent."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identity")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["agent_id"].(string)
		state, err := s.sessions.Load(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		data, _ := json.Marshal(state)
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleFindPlan(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResult, error) {
	var state domain.State
	if raw, ok := args["state"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return PlanResult{}, fmt.Errorf("invalid state: %w", err)
		}
	}

	plan, err := s.engine.FindPlan(ctx, state)
	if err != nil {
		return PlanResult{}, fmt.Errorf("planning failed: %w", err)
	}
	return newPlanResult(plan), nil
}

func (s *Server) handleRunAgent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResult, error) {
	id, _ := args["agent_id"].(string)
	if id == "" {
		return PlanResult{}, errors.New("agent_id is required")
	}

	agent, err := s.engine.NewAgent(nil, htn.WithID(id), htn.WithName(id))
	if err != nil {
		return PlanResult{}, err
	}

	plan, err := s.sessions.Run(ctx, agent)
	res := newPlanResult(plan)
	res.State = plain(agent.Snapshot())

	var execErr *htn.ExecutionError
	switch {
	case errors.As(err, &execErr):
		s.logger.Warn("MCP run stopped early", "agent_id", id, "err", err)
		res.Error = execErr.Error()
	case err != nil:
		return PlanResult{}, fmt.Errorf("run failed: %w", err)
	}
	return res, nil
}

func newPlanResult(p *htn.Plan) PlanResult {
	if p == nil {
		return PlanResult{Tasks: []string{}}
	}
	return PlanResult{
		Found:          true,
		Tasks:          p.Names(),
		Explored:       p.Explored,
		PredictedState: plain(p.PredictedState),
	}
}

// plain converts a state to generic JSON values, keeping the tagged
// encoding of durations and identifiers.
func plain(s domain.State) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func (s *Server) treeJSON() ([]byte, error) {
	root, state := s.engine.Tree()
	return json.Marshal(map[string]any{
		"root":   domain.Describe(root),
		"state":  state,
		"schema": s.engine.Schema(),
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Current Task Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.treeJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to describe tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: treeURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Task Tree Flowchart",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		root, _ := s.engine.Tree()
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "text/vnd.mermaid", Text: graph.GenerateMermaid(root, nil)},
		}, nil
	})
}
