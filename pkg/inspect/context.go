package inspect

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/faultlens/faultlens/pkg/inspect/observability"
)

// Context provides execution context to stages.
// It extends context.Context with turn metadata and an enriched logger.
//
// Context is immutable after creation. The engine creates a derived context
// per stage with the stage field set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with session, turn,
	// and stage context. Never returns nil.
	Logger() *slog.Logger

	// SessionID returns the session key this turn belongs to.
	SessionID() string

	// TurnID returns the unique identifier for this turn. Auto-generated.
	TurnID() string

	// Stage returns the stage being executed.
	Stage() Stage
}

// turnContext is the internal implementation of Context.
type turnContext struct {
	context.Context

	logger    *slog.Logger
	sessionID string
	turnID    string
	stage     Stage
}

// newTurnContext creates the root context for one turn.
func newTurnContext(ctx context.Context, logger *slog.Logger, sessionID string) *turnContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &turnContext{
		Context:   ctx,
		logger:    logger,
		sessionID: sessionID,
		turnID:    uuid.New().String(),
		stage:     stageEnd,
	}
}

// Logger returns the configured logger.
func (c *turnContext) Logger() *slog.Logger {
	return c.logger
}

// SessionID returns the session key.
func (c *turnContext) SessionID() string {
	return c.sessionID
}

// TurnID returns the turn identifier.
func (c *turnContext) TurnID() string {
	return c.turnID
}

// Stage returns the stage being executed.
func (c *turnContext) Stage() Stage {
	return c.stage
}

// withStage returns a derived context with the given stage set and the
// logger enriched. Used by the engine per stage.
func (c *turnContext) withStage(st Stage) *turnContext {
	return &turnContext{
		Context:   c.Context,
		logger:    observability.EnrichLogger(c.logger, c.sessionID, c.turnID, st.String()),
		sessionID: c.sessionID,
		turnID:    c.turnID,
		stage:     st,
	}
}
