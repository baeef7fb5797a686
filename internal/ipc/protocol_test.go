package ipc

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestAssignsUUID(t *testing.T) {
	a := NewRequest(CommandActivate)
	b := NewRequest(CommandActivate)

	if _, err := uuid.Parse(a.ID); err != nil {
		t.Fatalf("NewRequest().ID = %q is not a UUID: %v", a.ID, err)
	}
	if a.ID == b.ID {
		t.Fatal("NewRequest() reused an ID")
	}
	if a.Command != CommandActivate {
		t.Fatalf("Command = %q, want %q", a.Command, CommandActivate)
	}
}

func TestDecodeRequest(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		name    string
		raw     string
		want    Request
		wantErr bool
	}{
		{
			name: "activate",
			raw:  `{"id":"` + id + `","command":"activate-window"}`,
			want: Request{ID: id, Command: CommandActivate},
		},
		{
			name: "command is trimmed",
			raw:  `{"id":"` + id + `","command":"  toggle-window "}`,
			want: Request{ID: id, Command: CommandToggle},
		},
		{
			name: "missing id is accepted",
			raw:  `{"command":"show-settings"}`,
			want: Request{Command: CommandShowSettings},
		},
		{name: "missing command", raw: `{"id":"` + id + `"}`, wantErr: true},
		{name: "bad id", raw: `{"id":"not-a-uuid","command":"activate-window"}`, wantErr: true},
		{name: "not json", raw: `activate-window`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequest([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeRequest() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeRequest() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("decodeRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeFrameIsNewlineDelimited(t *testing.T) {
	frame, err := encodeFrame(Response{ID: "x", OK: true})
	if err != nil {
		t.Fatalf("encodeFrame() error = %v", err)
	}
	if got, want := string(frame), `{"id":"x","ok":true}`+"\n"; got != want {
		t.Fatalf("encodeFrame() = %q, want %q", got, want)
	}
}

func TestFailure(t *testing.T) {
	req := NewRequest("bogus")
	resp := Failure(req, "unknown command %q", req.Command)
	if resp.OK || resp.ID != req.ID || resp.Error != `unknown command "bogus"` {
		t.Fatalf("Failure() = %+v", resp)
	}
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
		wantEOF bool
	}{
		{name: "within limit", input: `{"command":"activate-window"}` + "\n", want: `{"command":"activate-window"}` + "\n"},
		{name: "eof without delimiter", input: `{"ok":true}`, want: `{"ok":true}`},
		{name: "empty input", input: "", wantEOF: true},
		{name: "oversized", input: strings.Repeat("a", maxFrameBytes+1) + "\n", wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bufio.NewReaderSize(strings.NewReader(tt.input), maxFrameBytes+1)
			raw, err := readFrame(reader, maxFrameBytes)
			switch {
			case tt.wantEOF:
				if err != io.EOF {
					t.Fatalf("readFrame() error = %v, want io.EOF", err)
				}
			case tt.wantErr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("readFrame() error = %v, want %q", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("readFrame() error = %v", err)
				}
				if string(raw) != tt.want {
					t.Fatalf("readFrame() = %q, want %q", raw, tt.want)
				}
			}
		})
	}
}

func TestIsConnectionErrorNil(t *testing.T) {
	if IsConnectionError(nil) {
		t.Fatal("IsConnectionError(nil) = true")
	}
}
