package inspect

import (
	"github.com/faultlens/faultlens/pkg/inspect/config"
	"github.com/faultlens/faultlens/pkg/inspect/fault"
)

// FromConfig builds engine options from a loaded configuration.
//
// Recognized keys:
//
//	concurrency           int     fan-out degree for analysis calls
//	confidence_threshold  float   minimum localization confidence
//	mismatch_marker       string  different-product verdict token
//	mismatch_response     string  fixed different-product reply
//	metrics               bool    enable OTel metrics
//	tracing               bool    enable OTel tracing
//	retry_max_attempts    int     collaborator retry attempts (1 = off)
//	retry_initial_backoff dur     starting backoff ("500ms", "2s")
//
// Unknown keys are ignored; absent keys keep engine defaults. Options built
// here can be combined with (and overridden by) explicit Option values
// passed after them to New.
func FromConfig(cfg config.Config) []Option {
	var opts []Option

	if cfg.Has("concurrency") {
		opts = append(opts, WithConcurrency(cfg.Int("concurrency", DefaultConcurrency)))
	}
	if cfg.Has("confidence_threshold") {
		opts = append(opts, WithConfidenceThreshold(cfg.Float("confidence_threshold", DefaultConfidence)))
	}
	if cfg.Has("mismatch_marker") {
		opts = append(opts, WithMismatchMarker(cfg.String("mismatch_marker", DefaultMismatchMarker)))
	}
	if cfg.Has("mismatch_response") {
		opts = append(opts, WithMismatchResponse(cfg.String("mismatch_response", DefaultMismatchResponse)))
	}
	if cfg.Has("metrics") {
		opts = append(opts, WithMetrics(cfg.Bool("metrics", false)))
	}
	if cfg.Has("tracing") {
		opts = append(opts, WithTracing(cfg.Bool("tracing", false)))
	}

	if attempts := cfg.Int("retry_max_attempts", 1); attempts > 1 {
		retry := fault.DefaultRetry
		retry.MaxAttempts = attempts
		retry.InitialBackoff = cfg.Duration("retry_initial_backoff", retry.InitialBackoff)
		opts = append(opts, WithRetry(retry))
	}

	return opts
}
