package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/protocol"
)

// ErrMalformedRequest wraps messages that are complete JSON objects but not valid requests
var ErrMalformedRequest = errors.New("malformed request")

// StdioTransport reads brace-delimited JSON-RPC requests and writes one response per line
type StdioTransport struct {
	reader *bufio.Reader
	mu     sync.Mutex
	writer *bufio.Writer
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over arbitrary streams
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
	}
}

// readObject returns the bytes of the next complete top-level JSON object.
// Braces inside string literals are ignored.
func (t *StdioTransport) readObject() ([]byte, error) {
	var data []byte
	var depth int
	var inString, escapeNext bool

	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if depth == 0 && b != '{' {
			// skip separators between messages
			continue
		}
		data = append(data, b)

		switch {
		case escapeNext:
			escapeNext = false
		case inString && b == '\\':
			escapeNext = true
		case b == '"':
			inString = !inString
		case !inString && b == '{':
			depth++
		case !inString && b == '}':
			depth--
			if depth == 0 {
				return data, nil
			}
		}
	}
}

// ReadRequest blocks until a full request arrives. io.EOF means the client went away.
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	data, err := t.readObject()
	if err != nil {
		if err == io.EOF {
			logger.Info("Received EOF on stdin, client disconnected")
		} else {
			logger.Error("Error reading from stdin:", err)
		}
		return nil, err
	}
	logger.Debug("Received raw request:", string(data))

	request, err := protocol.ParseJsonRpcRequest(data)
	if err != nil {
		logger.Error("Failed to parse JSON-RPC request:", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return request, nil
}

// WriteResponse writes a JSON-RPC response followed by a newline
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	b, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	b = append(b, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.Write(b); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	logger.Debug("Sending response:", string(b))
	return nil
}
