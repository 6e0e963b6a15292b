package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/kernelfn/core"
	"go.uber.org/zap"
)

// ServerName is reported in the initialize response
const ServerName = "kernelfn MCP Server"

// Server represents an MCP server
type Server struct {
	evaluator *core.Evaluator
	store     core.ResultStore
	handlers  map[string]Handler
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewServer creates a new MCP server. The result tools are only registered
// when store is non-nil.
func NewServer(evaluator *core.Evaluator, store core.ResultStore, logger *zap.Logger) *Server {
	if evaluator == nil {
		evaluator = core.NewEvaluator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		evaluator: evaluator,
		store:     store,
		handlers:  make(map[string]Handler),
		logger:    logger,
	}

	// Register tool handlers
	s.registerHandlers()

	return s
}

// registerHandlers registers all tool handlers
func (s *Server) registerHandlers() {
	s.handlers["compute_kernel"] = &ComputeKernelHandler{evaluator: s.evaluator, store: s.store}
	if s.store != nil {
		s.handlers["get_result"] = &GetResultHandler{store: s.store}
		s.handlers["list_results"] = &ListResultsHandler{store: s.store}
		s.handlers["delete_result"] = &DeleteResultHandler{store: s.store}
	}
}

// SetRequireFinite makes compute_kernel reject NaN and Inf inputs. Call it
// before Serve.
func (s *Server) SetRequireFinite(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handlers["compute_kernel"].(*ComputeKernelHandler); ok {
		h.requireFinite = on
	}
}

// Serve reads newline delimited JSON-RPC requests from r and writes one
// response per request to w until r is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	encoder := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Read until we get a complete JSON object
		line, err := reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		resp, ok := s.handleLine(ctx, line)
		if ok {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Warn("failed to send response", zap.Error(err))
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
	}
}

// handleLine decodes and answers one request line. Blank lines and
// notifications (requests without an ID) produce no response.
func (s *Server) handleLine(ctx context.Context, line []byte) (Response, bool) {
	if len(bytes.TrimSpace(line)) == 0 {
		return Response{}, false
	}

	// Parse the request
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{
			JSONRPC: JSONRPCVersion,
			Error: &Error{
				Code:    ErrorCodeParse,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}, true
	}

	// Validate JSON-RPC version
	if req.JSONRPC != JSONRPCVersion {
		return Response{
			JSONRPC: JSONRPCVersion,
			Error: &Error{
				Code:    ErrorCodeInvalidRequest,
				Message: "Invalid request",
				Data:    "Unsupported JSON-RPC version",
			},
			ID: req.ID,
		}, true
	}

	if req.ID == nil {
		s.logger.Debug("notification", zap.String("method", req.Method))
		return Response{}, false
	}

	return s.handleRequest(ctx, &req), true
}

// handleRequest handles a single JSON-RPC request
func (s *Server) handleRequest(ctx context.Context, req *Request) Response {
	resp := Response{
		JSONRPC: JSONRPCVersion,
		ID:      req.ID,
	}

	switch req.Method {
	case "initialize":
		result, err := s.handleInitialize(ctx, req.Params)
		if err != nil {
			resp.Error = &Error{
				Code:    ErrorCodeInvalidParams,
				Message: err.Error(),
			}
		} else {
			resp.Result = result
		}

	case "tools/list":
		resp.Result = ToolsListResponse{
			Tools: s.tools(),
		}

	case "tools/call":
		result, err := s.handleToolCall(ctx, req.Params)
		if err != nil {
			resp.Error = &Error{
				Code:    ErrorCodeInvalidParams,
				Message: err.Error(),
			}
		} else {
			resp.Result = result
		}

	default:
		resp.Error = &Error{
			Code:    ErrorCodeMethodNotFound,
			Message: "Method not found",
			Data:    req.Method,
		}
	}

	return resp
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (*InitializeResponse, error) {
	var req InitializeRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("invalid initialize params: %w", err)
		}
	}

	s.logger.Info("client connected",
		zap.String("client", req.ClientInfo.Name),
		zap.String("client_version", req.ClientInfo.Version))

	return &InitializeResponse{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{
				ListChanged: false,
			},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: "0.1.0",
		},
	}, nil
}

// handleToolCall handles a tool call request
func (s *Server) handleToolCall(ctx context.Context, params json.RawMessage) (*ToolCallResponse, error) {
	var req ToolCallRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("invalid tool call params: %w", err)
	}

	// Get the handler for this tool
	s.mu.RLock()
	handler, exists := s.handlers[req.Name]
	s.mu.RUnlock()

	if !exists {
		return errorContent(fmt.Sprintf("Unknown tool: %s", req.Name)), nil
	}

	// Execute the tool
	result, err := handler.Execute(ctx, req.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", req.Name), zap.Error(err))
		return errorContent(fmt.Sprintf("Tool execution error: %v", err)), nil
	}

	return result, nil
}

// tools returns the definitions of the registered tools
func (s *Server) tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tools []Tool
	for _, tool := range GetTools() {
		if _, ok := s.handlers[tool.Name]; ok {
			tools = append(tools, tool)
		}
	}
	return tools
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("MCP server shutting down")
	return nil
}

func errorContent(text string) *ToolCallResponse {
	return &ToolCallResponse{
		Content: []ToolContent{
			{
				Type: "text",
				Text: text,
			},
		},
		IsError: true,
	}
}
