// Package observability provides structured logging, metrics, and tracing
// for the inspection engine.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds turn context to a logger.
// Returns a new logger with session_id, turn_id, and stage fields.
func EnrichLogger(logger *slog.Logger, sessionID, turnID, stage string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("session_id", sessionID),
		slog.String("turn_id", turnID),
		slog.String("stage", stage),
	)
}

// LogTurnStart logs the start of a pipeline turn.
func LogTurnStart(logger *slog.Logger, sessionID, turnID string, imageCount int) {
	if logger == nil {
		return
	}
	logger.Info("turn starting",
		slog.String("session_id", sessionID),
		slog.String("turn_id", turnID),
		slog.Int("images", imageCount),
	)
}

// LogTurnComplete logs successful turn completion.
func LogTurnComplete(logger *slog.Logger, sessionID, turnID string, durationMs float64, stagesRun int) {
	if logger == nil {
		return
	}
	logger.Info("turn completed",
		slog.String("session_id", sessionID),
		slog.String("turn_id", turnID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("stages_run", stagesRun),
	)
}

// LogTurnError logs turn failure.
func LogTurnError(logger *slog.Logger, sessionID, turnID string, err error, durationMs float64, lastStage string) {
	if logger == nil {
		return
	}
	logger.Error("turn failed",
		slog.String("session_id", sessionID),
		slog.String("turn_id", turnID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_stage", lastStage),
	)
}

// LogStageStart logs stage execution start.
func LogStageStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage starting",
		slog.String("stage", stage),
	)
}

// LogStageComplete logs successful stage completion.
func LogStageComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageSkipped logs a stage that was a no-op for this turn
// (memoized result reused, or nothing to do).
func LogStageSkipped(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage skipped",
		slog.String("stage", stage),
	)
}

// LogStageError logs stage execution error.
func LogStageError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogViewSkipped logs a view dropped during detection.
// Per-view localization failures are tolerated, not fatal.
func LogViewSkipped(logger *slog.Logger, view string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("view skipped",
		slog.String("view", view),
		slog.String("error", err.Error()),
	)
}

// LogSessionSave logs a committed session record.
func LogSessionSave(logger *slog.Logger, sessionID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("session saved",
		slog.String("session_id", sessionID),
		slog.Int("size_bytes", sizeBytes),
	)
}
