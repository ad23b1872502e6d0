package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/config"
)

// protocolVersion is the MCP revision the server speaks.
const protocolVersion = "2024-11-05"

// maxMessageBytes bounds a single request line.
const maxMessageBytes = 16 << 20

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

// Server is an MCP stdio server. It reads JSON-RPC requests from r and
// writes JSON-RPC responses to w. Calls are dispatched to registered tools.
// All activity data arrives in tool arguments; the server holds only
// read-only parameters.
type Server struct {
	tools      []toolDef
	byName     map[string]int
	version    string
	opts       analyzer.Options
	taxonomy   *analyzer.Taxonomy
	classifier analyzer.Classifier
	rules      *analyzer.RuleSet
}

// toolDef describes a registered MCP tool.
type toolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     toolHandler
}

// toolHandler is the function signature for MCP tool handlers.
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// toolsCallResult wraps a tool result as an MCP content response.
type toolsCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolListEntry is one tool in a tools/list response.
type toolListEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// NewServer constructs a Server from cfg. rules may be nil when no community
// rules are loaded.
func NewServer(cfg *config.Config, rules *analyzer.RuleSet, version string) (*Server, error) {
	tax, err := cfg.Taxonomy.Compile()
	if err != nil {
		return nil, err
	}
	s := &Server{
		version:    version,
		opts:       cfg.AnalyzerOptions(),
		taxonomy:   tax,
		classifier: analyzer.NewKeywordClassifier(),
		rules:      rules,
	}
	addTools(s)
	return s, nil
}

// registerTool adds def to the tool list and the name index.
func (s *Server) registerTool(def toolDef) {
	if s.byName == nil {
		s.byName = make(map[string]int)
	}
	s.byName[def.Name] = len(s.tools)
	s.tools = append(s.tools, def)
}

// Run blocks, reading JSON-RPC 2.0 messages from r and writing responses to w,
// until ctx is cancelled or r returns EOF. Returns nil on clean shutdown,
// or a non-nil error for unexpected I/O failures.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	// Tool arguments carry whole timelines.
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)

	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- fmt.Errorf("reading request: %w", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			if err := s.handleLine(ctx, line, bw); err != nil {
				return err
			}
		}
	}
}

// handleLine processes a single JSON-RPC line and writes the response.
func (s *Server) handleLine(ctx context.Context, line string, bw *bufio.Writer) error {
	var req jsonrpcRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return s.writeResponse(bw, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: codeParseError, Message: "Parse error"},
		})
	}

	// Notifications get no response.
	if req.ID == nil {
		slog.Debug("mcp notification", "method", req.Method)
		return nil
	}

	resp := jsonrpcResponse{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = s.initializeResult()
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		resp.Result = s.toolsListResult()
	case "tools/call":
		var params toolsCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params"}
			break
		}
		resp.Result = s.callTool(ctx, params)
	default:
		resp.Error = &jsonrpcError{Code: codeMethodNotFound, Message: "Method not found"}
	}
	return s.writeResponse(bw, resp)
}

func (s *Server) initializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "focuslens",
			"version": s.version,
		},
	}
}

func (s *Server) toolsListResult() map[string]any {
	entries := make([]toolListEntry, 0, len(s.tools))
	for _, t := range s.tools {
		entries = append(entries, toolListEntry{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return map[string]any{"tools": entries}
}

// callTool runs the named tool. Tool failures are reported in the result
// with isError set, not as JSON-RPC errors.
func (s *Server) callTool(ctx context.Context, params toolsCallParams) toolsCallResult {
	idx, ok := s.byName[params.Name]
	if !ok {
		return toolError(fmt.Errorf("unknown tool: %s", params.Name))
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	start := time.Now()
	result, err := s.tools[idx].Handler(ctx, args)
	slog.Debug("mcp tool call", "tool", params.Name, "duration", time.Since(start), "error", err)
	if err != nil {
		return toolError(err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return toolsCallResult{Content: []mcpContent{{Type: "text", Text: string(data)}}}
}

func toolError(err error) toolsCallResult {
	return toolsCallResult{
		Content: []mcpContent{{Type: "text", Text: err.Error()}},
		IsError: true,
	}
}

// writeResponse marshals resp as a single JSON line and flushes the writer.
func (s *Server) writeResponse(bw *bufio.Writer, resp jsonrpcResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	data = append(data, '\n')
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Flush()
}
