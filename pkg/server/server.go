package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/protocol"
	"github.com/richard-senior/apex/pkg/tools"
	"github.com/richard-senior/apex/pkg/transport"
)

const (
	// ToolPrefix is prepended to every registered tool name
	ToolPrefix = "mcp___"
	Name       = "apex"
	Version    = "1.0.0"
)

// HandlerFunc handles a method or tool call. A nil result with a nil error means no response.
type HandlerFunc func(params any) (any, error)

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	mu        sync.RWMutex
	methods   map[string]HandlerFunc
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
	done      bool
}

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// InitInstance initializes the singleton server with the given transport and toolbox
func InitInstance(t transport.Transport, tb *tools.Toolbox) *Server {
	once.Do(func() {
		instance = NewServer(t)
		if tb != nil {
			instance.RegisterToolbox(tb)
		}
	})
	return instance
}

// GetInstance returns the singleton, creating a stdio server without tools if needed
func GetInstance() *Server {
	if instance == nil {
		logger.Warn("Server instance requested but not initialized. Use InitInstance first.")
		return InitInstance(transport.NewStdioTransport(), nil)
	}
	return instance
}

// NewServer creates a server with the built-in MCP methods registered
func NewServer(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		methods:   make(map[string]HandlerFunc),
		handlers:  make(map[string]HandlerFunc),
	}
	s.methods[string(protocol.MethodInitialize)] = s.handleInitialize
	s.methods[string(protocol.MethodPing)] = s.handlePing
	s.methods[string(protocol.MethodToolsList)] = s.handleToolsList
	s.methods[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.methods[string(protocol.MethodShutdown)] = s.handleShutdown
	return s
}

// RegisterTool registers a tool under its prefixed name
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.HasPrefix(tool.Name, ToolPrefix) {
		tool.Name = ToolPrefix + tool.Name
	}
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// RegisterToolbox registers every prediction tool
func (s *Server) RegisterToolbox(tb *tools.Toolbox) {
	logger.Info("Registering prediction tools...")
	s.RegisterTool(tools.PredictMatchTool(), tb.HandlePredictMatch)
	s.RegisterTool(tools.PredictionHistoryTool(), tb.HandlePredictionHistory)
	s.RegisterTool(tools.ListFixturesTool(), tb.HandleListFixtures)
	s.RegisterTool(tools.AnalyzeFixtureTool(), tb.HandleAnalyzeFixture)
	s.RegisterTool(tools.TeamNewsTool(), tb.HandleTeamNews)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// Start processes requests until the client disconnects, asks to shut down or a signal arrives
func (s *Server) Start() error {
	logger.Info("Starting MCP server")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests reads and answers requests. A clean EOF or shutdown returns nil.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, transport.ErrMalformedRequest) {
				resp := protocol.NewJsonRpcErrorResponse(protocol.ErrParse, err.Error(), nil, nil)
				if werr := s.transport.WriteResponse(resp); werr != nil {
					return werr
				}
				continue
			}
			return err
		}

		resp := s.HandleRequest(req)
		if resp != nil {
			if err := s.transport.WriteResponse(resp); err != nil {
				return err
			}
		}
		if s.isDone() {
			logger.Info("Shutdown requested, stopping")
			return nil
		}
	}
}

func (s *Server) isDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// HandleRequest answers one request. Notifications yield nil.
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", req.String())

	if strings.HasPrefix(req.Method, "notifications/") || req.Method == string(protocol.MethodCancelRequest) {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	handler := s.methods[req.Method]
	if handler == nil {
		if req.IsNotification() {
			return nil
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	var params any
	if len(req.Params) > 0 {
		params = req.Params
	}
	result, err := handler(params)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			return protocol.NewJsonRpcErrorResponse(rpcErr.Code, rpcErr.Message, rpcErr.Data, req.ID)
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, err.Error(), nil, req.ID)
	}
	if result == nil {
		result = struct{}{}
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	logger.Debug("Full response:", resp.String())
	return resp
}

func rawParams(params any) json.RawMessage {
	if raw, ok := params.(json.RawMessage); ok {
		return raw
	}
	return nil
}

// handleInitialize echoes the client's protocol version and advertises tools
func (s *Server) handleInitialize(params any) (any, error) {
	version := protocol.ProtocolVersion
	var req struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if raw := rawParams(params); raw != nil {
		if err := json.Unmarshal(raw, &req); err != nil {
			logger.Warn("Failed to parse initialize params:", err)
		} else if req.ProtocolVersion != "" {
			version = req.ProtocolVersion
		}
	}
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools, protocol", version)

	return map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]string{
			"name":    Name,
			"version": Version,
		},
	}, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleShutdown(params any) (any, error) {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	return struct{}{}, nil
}

func (s *Server) handleToolsList(params any) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// lookupTool finds a handler by exact name, then with the prefix added or removed
func (s *Server) lookupTool(name string) HandlerFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h := s.handlers[name]; h != nil {
		return h
	}
	if strings.HasPrefix(name, ToolPrefix) {
		return s.handlers[strings.TrimPrefix(name, ToolPrefix)]
	}
	return s.handlers[ToolPrefix+name]
}

// handleToolsCall runs a tool. Tool failures are reported in the result with isError set.
func (s *Server) handleToolsCall(params any) (any, error) {
	var call protocol.ToolCallParams
	raw := rawParams(params)
	if raw == nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "missing tools/call parameters"}
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "invalid tools/call parameters: " + err.Error()}
	}
	logger.Info("Tool call requested for:", call.Name)

	handler := s.lookupTool(call.Name)
	if handler == nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: fmt.Sprintf("tool not found: %s", call.Name)}
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	result, err := handler(call.Arguments)
	if err != nil {
		logger.Warn("Tool execution failed:", call.Name, err)
		return protocol.NewErrorResult(err), nil
	}
	out, err := protocol.NewTextResult(result)
	if err != nil {
		return protocol.NewErrorResult(err), nil
	}
	return out, nil
}
