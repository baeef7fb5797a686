//go:build windows

package ipc

import "testing"

func TestDefaultEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		override string
		username string
		want     string
	}{
		{name: "trusted override", override: `\\.\pipe\pinote-ci_pipe`, want: `\\.\pipe\pinote-ci_pipe`},
		{name: "untrusted override", override: `\\.\pipe\other-app`, username: "unit-tester", want: `\\.\pipe\pinote-unit-tester`},
		{name: "sanitized username", username: "unit user!", want: `\\.\pipe\pinote-unit_user_`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EndpointEnv, tt.override)
			t.Setenv("USERNAME", tt.username)
			if got := DefaultEndpoint(); got != tt.want {
				t.Fatalf("DefaultEndpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}
