package inspect

import (
	"log/slog"

	"github.com/faultlens/faultlens/pkg/inspect/fault"
	"github.com/faultlens/faultlens/pkg/inspect/observability"
)

// Defaults for engine configuration.
const (
	// DefaultConcurrency is the fan-out degree for per-region analysis.
	DefaultConcurrency = 3

	// DefaultConfidence is the minimum localization confidence threshold.
	DefaultConfidence = 0.5

	// DefaultMismatchMarker is the token the engine looks for in the
	// comparison verdict to recognize a different product. It matches the
	// phrasing the comparison collaborator documents, so the short-circuit
	// path is reachable without collaborator-specific wiring.
	DefaultMismatchMarker = "VERDICT: WRONG PRODUCT"

	// DefaultMismatchResponse is the fixed reply for different-product cases.
	DefaultMismatchResponse = "Based on the images provided, the product does not match our records for this order."
)

// engineConfig holds configuration for the engine.
type engineConfig struct {
	logger           *slog.Logger
	metrics          observability.MetricsRecorder
	spans            observability.SpanManager
	tracingEnabled   bool
	concurrency      int
	confidence       float64
	mismatchMarker   string
	mismatchResponse string
	retry            fault.RetryConfig
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger:           slog.Default(),
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
		concurrency:      DefaultConcurrency,
		confidence:       DefaultConfidence,
		mismatchMarker:   DefaultMismatchMarker,
		mismatchResponse: DefaultMismatchResponse,
		retry:            fault.NoRetry,
	}
}

// Option configures the engine.
type Option func(*engineConfig)

// WithLogger sets the logger. The engine enriches it per turn and stage
// with session_id, turn_id, and stage fields.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables OpenTelemetry metrics.
// Uses the global OTel meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing.
// Uses the global OTel tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithConcurrency sets the fan-out degree for per-region analysis calls.
// Default: 3. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithConfidenceThreshold sets the minimum localization confidence.
// Default: 0.5. Values outside (0, 1] are ignored.
func WithConfidenceThreshold(threshold float64) Option {
	return func(c *engineConfig) {
		if threshold > 0 && threshold <= 1 {
			c.confidence = threshold
		}
	}
}

// WithMismatchMarker sets the token that identifies a different-product
// verdict. An empty marker disables the short-circuit entirely.
func WithMismatchMarker(marker string) Option {
	return func(c *engineConfig) {
		c.mismatchMarker = marker
	}
}

// WithMismatchResponse sets the fixed reply returned for different-product
// verdicts without consulting the policy reasoner.
func WithMismatchResponse(response string) Option {
	return func(c *engineConfig) {
		if response != "" {
			c.mismatchResponse = response
		}
	}
}

// WithRetry sets the retry policy for Analyze, Compare, and Decide
// collaborator calls. Default: fault.NoRetry, so a single collaborator
// failure fails the stage.
func WithRetry(cfg fault.RetryConfig) Option {
	return func(c *engineConfig) {
		c.retry = cfg
	}
}
