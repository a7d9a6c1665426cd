package server

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/richard-senior/apex/pkg/protocol"
	"github.com/richard-senior/apex/pkg/store"
	"github.com/richard-senior/apex/pkg/tools"
	"github.com/richard-senior/apex/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport replays queued requests and records responses
type fakeTransport struct {
	requests  []*protocol.JsonRpcRequest
	responses []*protocol.JsonRpcResponse
}

func (f *fakeTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	if len(f.requests) == 0 {
		return nil, io.EOF
	}
	r := f.requests[0]
	f.requests = f.requests[1:]
	return r, nil
}

func (f *fakeTransport) WriteResponse(r *protocol.JsonRpcResponse) error {
	f.responses = append(f.responses, r)
	return nil
}

func request(t *testing.T, method string, params any, id any) *protocol.JsonRpcRequest {
	t.Helper()
	r, err := protocol.NewJsonRpcRequest(method, params, id)
	require.NoError(t, err)
	return r
}

func newTestServer(t *testing.T) (*Server, *fakeTransport) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	tb, err := tools.NewToolbox(nil, st, nil)
	require.NoError(t, err)

	ft := &fakeTransport{}
	s := NewServer(ft)
	s.RegisterToolbox(tb)
	return s, ft
}

func toolResult(t *testing.T, resp *protocol.JsonRpcResponse) protocol.ToolResult {
	t.Helper()
	require.Nil(t, resp.Error)
	var res protocol.ToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	return res
}

func TestInitializeAndToolsList(t *testing.T) {
	s, ft := newTestServer(t)
	ft.requests = []*protocol.JsonRpcRequest{
		request(t, "initialize", map[string]any{"protocolVersion": "2025-03-26"}, 0),
		request(t, "notifications/initialized", nil, nil),
		request(t, "tools/list", nil, 1),
		request(t, "ping", nil, 2),
	}
	require.NoError(t, s.ProcessRequests())
	require.Len(t, ft.responses, 3)

	var init struct {
		ProtocolVersion string            `json:"protocolVersion"`
		ServerInfo      map[string]string `json:"serverInfo"`
		Capabilities    map[string]any    `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(ft.responses[0].Result, &init))
	assert.Equal(t, "2025-03-26", init.ProtocolVersion)
	assert.Equal(t, "apex", init.ServerInfo["name"])
	assert.Contains(t, init.Capabilities, "tools")

	var list protocol.ToolsResponse
	require.NoError(t, json.Unmarshal(ft.responses[1].Result, &list))
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"mcp___predict_match", "mcp___prediction_history", "mcp___list_fixtures",
		"mcp___analyze_fixture", "mcp___team_news",
	}, names)

	assert.JSONEq(t, `{}`, string(ft.responses[2].Result))
	assert.Equal(t, 2, ft.responses[2].ID)
}

func TestInitializeDefaultsProtocolVersion(t *testing.T) {
	s, _ := newTestServer(t)
	resp := s.HandleRequest(request(t, "initialize", nil, 1))
	var init map[string]any
	require.NoError(t, json.Unmarshal(resp.Result, &init))
	assert.Equal(t, protocol.ProtocolVersion, init["protocolVersion"])
}

func TestToolsCallPredictMatch(t *testing.T) {
	s, _ := newTestServer(t)
	args := map[string]any{
		"homeName":  "Arsenal",
		"awayName":  "Chelsea",
		"sport":     "soccer",
		"homeStats": map[string]any{"record": "10-2-3", "news": []any{}},
		"awayStats": map[string]any{"record": "5-4-6", "news": []any{}},
	}
	for _, name := range []string{"mcp___predict_match", "predict_match"} {
		resp := s.HandleRequest(request(t, "tools/call", map[string]any{"name": name, "arguments": args}, 5))
		res := toolResult(t, resp)
		assert.False(t, res.IsError)
		require.Len(t, res.Content, 1)

		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &out))
		assert.Equal(t, "Arsenal to Win", out["prediction"])
		assert.NotEmpty(t, out["recordId"])
	}

	resp := s.HandleRequest(request(t, "tools/call", map[string]any{"name": "prediction_history", "arguments": map[string]any{"limit": 10}}, 6))
	res := toolResult(t, resp)
	var hist struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &hist))
	assert.Equal(t, 2, hist.Count)
}

func TestToolsCallFailuresAreToolErrors(t *testing.T) {
	s, _ := newTestServer(t)

	resp := s.HandleRequest(request(t, "tools/call", map[string]any{
		"name":      "predict_match",
		"arguments": map[string]any{"awayName": "B", "sport": "soccer"},
	}, 1))
	res := toolResult(t, resp)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "home")

	// no ESPN client configured
	resp = s.HandleRequest(request(t, "tools/call", map[string]any{
		"name":      "analyze_fixture",
		"arguments": map[string]any{"league": "eng.1", "eventId": "1"},
	}, 2))
	res = toolResult(t, resp)
	assert.True(t, res.IsError)
}

func TestProtocolErrors(t *testing.T) {
	s, _ := newTestServer(t)

	resp := s.HandleRequest(request(t, "resources/list", nil, 1))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrMethodNotFound, resp.Error.Code)

	resp = s.HandleRequest(request(t, "tools/call", map[string]any{"name": "nope"}, 2))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrInvalidParams, resp.Error.Code)

	resp = s.HandleRequest(request(t, "tools/call", nil, 3))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrInvalidParams, resp.Error.Code)

	assert.Nil(t, s.HandleRequest(request(t, "$/cancelRequest", map[string]any{"id": 1}, nil)))
	assert.Nil(t, s.HandleRequest(request(t, "unknown/notification", nil, nil)))
}

func TestShutdownStopsProcessing(t *testing.T) {
	s, ft := newTestServer(t)
	ft.requests = []*protocol.JsonRpcRequest{
		request(t, "shutdown", nil, 1),
		request(t, "ping", nil, 2),
	}
	require.NoError(t, s.ProcessRequests())
	require.Len(t, ft.responses, 1)
	assert.Len(t, ft.requests, 1)
}

func TestStdioRoundTrip(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"ping","id":1}`,
		`{"jsonrpc":"1.0","method":"ping","id":2}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"predict_match","arguments":{"homeName":"A","awayName":"B","sport":"basketball","store":false}},"id":3}`,
	}, "\n")
	var out strings.Builder
	tr := transport.NewStreamTransport(strings.NewReader(in), &out)

	tb, err := tools.NewToolbox(nil, nil, nil)
	require.NoError(t, err)
	s := NewServer(tr)
	s.RegisterToolbox(tb)
	require.NoError(t, s.ProcessRequests())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":{},"id":1}`, lines[0])

	var parseErr protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &parseErr))
	require.NotNil(t, parseErr.Error)
	assert.Equal(t, protocol.ErrParse, parseErr.Error.Code)

	var call protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &call))
	var res protocol.ToolResult
	require.NoError(t, json.Unmarshal(call.Result, &res))
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "No Clear Edge")
}
