package main

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		env, level string
		want       slog.Level
	}{
		{"local", "", slog.LevelDebug},
		{"production", "", slog.LevelInfo},
		{"production", "debug", slog.LevelDebug},
		{"development", "WARN", slog.LevelWarn},
		{"local", "error", slog.LevelError},
		{"production", "bogus", slog.LevelInfo},
	}
	for _, tc := range testCases {
		if got := parseLevel(tc.env, tc.level); got != tc.want {
			t.Errorf("parseLevel(%q, %q) = %v, want %v", tc.env, tc.level, got, tc.want)
		}
	}
}

func TestSetupLogger_HandlerByEnv(t *testing.T) {
	if _, ok := setupLogger("local", "").Handler().(*slog.TextHandler); !ok {
		t.Error("local env should use the text handler")
	}
	if _, ok := setupLogger("production", "").Handler().(*slog.JSONHandler); !ok {
		t.Error("production env should use the JSON handler")
	}
}
