package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBatchID    = "batch_id"
	KeyDocument   = "document"
	KeyOutput     = "output"
	KeyPhase      = "phase"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyWarnings   = "warnings"
	KeyErrors     = "errors"
	KeyQuality    = "quality_score"
	KeyError      = "error"
)

// Granular helpers returning slog.Attr so callers can compose.
func BatchID(id string) slog.Attr       { return slog.String(KeyBatchID, id) }
func Document(path string) slog.Attr    { return slog.String(KeyDocument, path) }
func Output(path string) slog.Attr      { return slog.String(KeyOutput, path) }
func Phase(name string) slog.Attr       { return slog.String(KeyPhase, name) }
func Status(s string) slog.Attr         { return slog.String(KeyStatus, s) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Warnings(n int) slog.Attr          { return slog.Int(KeyWarnings, n) }
func Errors(n int) slog.Attr            { return slog.Int(KeyErrors, n) }
func Quality(score float64) slog.Attr   { return slog.Float64(KeyQuality, score) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
