package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/internal/logging"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// EvaluateResponse aligns with the HTTP Decision schema.
type EvaluateResponse struct {
	Condition domain.Condition    `json:"condition" jsonschema_description:"The condition that was evaluated"`
	Result    bool                `json:"result" jsonschema_description:"Whether the build should run"`
	Reason    string              `json:"reason" jsonschema_description:"Short explanation of the result"`
	Verdicts  []condition.Verdict `json:"verdicts" jsonschema_description:"How the matcher saw each cause"`
}

// Gate defines what the MCP server needs from the evaluator.
type Gate interface {
	Explain(ctx context.Context, cond domain.Condition, causes []domain.Cause) (condition.Decision, error)
}

// Server wraps a Gate and exposes it as an MCP Server.
type Server struct {
	gate       Gate
	conditions ports.ConditionLoader
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithConditions enables the condition lookup tools.
func WithConditions(l ports.ConditionLoader) Option {
	return func(s *Server) { s.conditions = l }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// evaluateArgs is the decoded argument set of evaluate_causes.
type evaluateArgs struct {
	ConditionID string `mapstructure:"condition_id"`
	Matcher     string `mapstructure:"matcher"`
	Filter      string `mapstructure:"filter"`
	Exclusive   bool   `mapstructure:"exclusive"`
	Causes      string `mapstructure:"causes"`
}

// NewServer creates a new MCP Server instance.
func NewServer(gate Gate, opts ...Option) *Server {
	s := &Server{
		gate:      gate,
		mcpServer: server.NewMCPServer("runcondition-mcp", strings.TrimSpace(runcondition.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server for custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	evaluateTool := mcp.NewTool("evaluate_causes",
		mcp.WithDescription("Decide whether a build should run given its causes and a user or upstream condition."),
		mcp.WithString("matcher", mcp.Description("Cause kind to inspect: user or upstream (ignored when condition_id is set)")),
		mcp.WithString("filter", mcp.Description("Comma separated user ids or upstream project names. Empty accepts any.")),
		mcp.WithBoolean("exclusive", mcp.Description("Require the build to have exactly one cause")),
		mcp.WithString("condition_id", mcp.Description("ID of a persisted condition to use instead of matcher/filter/exclusive")),
		mcp.WithString("causes", mcp.Required(), mcp.Description(`JSON array of cause objects or compact strings such as "user:fred" or "upstream:core#12"`)),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	if s.conditions == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("list_conditions",
		mcp.WithDescription("List the IDs of persisted conditions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.conditions.ListConditions(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_condition",
		mcp.WithDescription("Get a persisted condition by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Condition ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["id"].(string)
		cond, err := s.conditions.GetCondition(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, _ := json.Marshal(cond)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	var in evaluateArgs
	if err := mapstructure.WeakDecode(args, &in); err != nil {
		return EvaluateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	cond, err := s.resolveCondition(ctx, in)
	if err != nil {
		return EvaluateResponse{}, err
	}

	causes, err := decodeCauses(in.Causes)
	if err != nil {
		s.logger.Warn("MCP evaluate: causes rejected", "error", err)
		return EvaluateResponse{}, err
	}

	d, err := s.gate.Explain(ctx, cond, causes)
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("invalid condition: %w", err)
	}

	return EvaluateResponse{
		Condition: cond,
		Result:    d.Result,
		Reason:    d.Reason,
		Verdicts:  d.Verdicts,
	}, nil
}

func (s *Server) resolveCondition(ctx context.Context, in evaluateArgs) (domain.Condition, error) {
	if in.ConditionID == "" {
		return domain.Condition{
			Matcher:   domain.MatcherKind(in.Matcher),
			Filter:    in.Filter,
			Exclusive: in.Exclusive,
		}, nil
	}
	if s.conditions == nil {
		return domain.Condition{}, fmt.Errorf("condition lookup is not configured")
	}
	return s.conditions.GetCondition(ctx, in.ConditionID)
}

// decodeCauses accepts either a JSON array of cause objects or of compact cause strings.
func decodeCauses(raw string) ([]domain.Cause, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("causes are required")
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("causes must be a JSON array: %w", err)
	}

	causes := make([]domain.Cause, 0, len(items))
	for i, item := range items {
		var compact string
		if err := json.Unmarshal(item, &compact); err == nil {
			c, err := domain.ParseCause(compact)
			if err != nil {
				return nil, fmt.Errorf("cause %d: %w", i, err)
			}
			causes = append(causes, c)
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, fmt.Errorf("cause %d: expected string or object", i)
		}
		var c domain.Cause
		if err := mapstructure.WeakDecode(obj, &c); err != nil {
			return nil, fmt.Errorf("cause %d: %w", i, err)
		}
		causes = append(causes, c)
	}
	return causes, nil
}
