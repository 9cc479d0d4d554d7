package main

import (
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"postgres://console:s3cret@db:5432/console?sslmode=disable", "postgres://console:xxxxx@db:5432/console?sslmode=disable"},
		{"postgres://db:5432/console", "***"},
		{"::not a url", "***"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.raw); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRun_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		command, arg, want string
	}{
		{"sideways", "", "unknown command"},
		{"steps", "", "non-zero count"},
		{"steps", "0", "non-zero count"},
		{"force", "v1", "needs a version"},
	}
	for _, tt := range tests {
		err := run(nil, tt.command, tt.arg)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("run(%q, %q) error = %v, want %q", tt.command, tt.arg, err, tt.want)
		}
	}
}
