package mcp

import (
	"context"
	"encoding/json"

	"github.com/dshills/kernelfn/core"
)

// Protocol constants
const (
	ProtocolVersion = "2024-11-05"
	JSONRPCVersion  = "2.0"
)

// Request represents an MCP JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response represents an MCP JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error represents an MCP error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard error codes
const (
	ErrorCodeParse          = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema defines the schema for tool inputs
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property defines a property in the input schema
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
}

// InitializeRequest for initialize method
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ClientInfo         `json:"clientInfo"`
}

// InitializeResponse for initialize method response
type InitializeResponse struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ClientCapabilities is accepted but not inspected
type ClientCapabilities map[string]interface{}

// ServerCapabilities defines what the server supports
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates tool support
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ClientInfo provides client information
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo provides server information
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsListResponse for tools/list method response
type ToolsListResponse struct {
	Tools []Tool `json:"tools"`
}

// ToolCallRequest for tools/call method
type ToolCallRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolCallResponse for tools/call method response
type ToolCallResponse struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent represents content returned by a tool
type ToolContent struct {
	Type string      `json:"type"`
	Text string      `json:"text,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// Handler defines the interface for tool handlers
type Handler interface {
	Execute(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error)
}

// ComputeKernelArgs are the arguments of compute_kernel
type ComputeKernelArgs struct {
	Family    string            `json:"family"`
	Precision string            `json:"precision,omitempty"`
	X         [][]core.Number   `json:"x"`
	Y         [][]core.Number   `json:"y,omitempty"`
	Scale     *float64          `json:"scale,omitempty"`
	Shift     *float64          `json:"shift,omitempty"`
	Gamma     *float64          `json:"gamma,omitempty"`
	Sigma     *float64          `json:"sigma,omitempty"`
	Degree    *int              `json:"degree,omitempty"`
	Store     bool              `json:"store,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ComputeKernelResult is the payload returned by compute_kernel
type ComputeKernelResult struct {
	ID     string          `json:"id,omitempty"`
	Params core.ParamsSpec `json:"params"`
	Matrix *core.Matrix    `json:"matrix"`
}

// ResultIDArgs select a stored result
type ResultIDArgs struct {
	ID string `json:"id"`
}
