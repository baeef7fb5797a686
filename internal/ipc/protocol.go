// Package ipc carries commands from a second launch to the running shell
// over a per-user named pipe (Windows) or unix socket. Each connection
// carries one JSON request line and one JSON response line.
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Commands understood by the running instance.
const (
	CommandActivate     = "activate-window"
	CommandToggle       = "toggle-window"
	CommandShowSettings = "show-settings"
)

const maxFrameBytes = 64 * 1024

// Request is a single command sent to the running instance.
type Request struct {
	ID      string `json:"id"`
	Command string `json:"command"`
}

// Response answers the Request with the same ID.
type Response struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CommandExecutor applies a request in the running instance.
type CommandExecutor interface {
	Execute(req Request) Response
}

// ExecutorFunc adapts a function to CommandExecutor.
type ExecutorFunc func(req Request) Response

func (f ExecutorFunc) Execute(req Request) Response { return f(req) }

// NewRequest builds a request with a fresh correlation ID.
func NewRequest(command string) Request {
	return Request{ID: uuid.NewString(), Command: command}
}

// Failure builds an error response for req.
func Failure(req Request, format string, args ...any) Response {
	return Response{ID: req.ID, Error: fmt.Sprintf(format, args...)}
}

func encodeFrame(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		return Request{}, errors.New("command is required")
	}
	if req.ID != "" {
		if _, err := uuid.Parse(req.ID); err != nil {
			return Request{}, fmt.Errorf("invalid request id %q: %w", req.ID, err)
		}
	}
	return req, nil
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// readFrame reads one newline-delimited frame. reader must be sized to at
// least maxBytes+1. Data cut short by EOF is returned as a frame.
func readFrame(reader *bufio.Reader, maxBytes int) ([]byte, error) {
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("frame exceeds %d bytes", maxBytes)
	}
	if errors.Is(err, io.EOF) {
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
