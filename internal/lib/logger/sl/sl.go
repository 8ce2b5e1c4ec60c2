// Package sl holds small slog helpers shared across packages.
package sl

import "log/slog"

// Err returns an "error" attribute for er. A nil error yields an empty value.
func Err(er error) slog.Attr {
	if er == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("")}
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(er.Error()),
	}
}

// Discard returns a logger that drops every record. Used by tests and optional components.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
