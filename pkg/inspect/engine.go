package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/faultlens/faultlens/pkg/inspect/observability"
	"github.com/faultlens/faultlens/pkg/inspect/session"
)

// Deps are the injected collaborators and storage the engine orchestrates.
// All fields are required; lifecycle (Close, connection pooling) is owned
// by the application wiring, not the engine.
type Deps struct {
	Registry   ReferenceRegistry
	Detector   Detector
	Analyzer   VisionAnalyzer
	Comparator Comparator
	Reasoner   PolicyReasoner
	Corpus     PolicyCorpus
	Sessions   session.Store
}

// validate reports the first missing dependency.
func (d Deps) validate() error {
	switch {
	case d.Registry == nil:
		return errors.New("inspect: Deps.Registry is required")
	case d.Detector == nil:
		return errors.New("inspect: Deps.Detector is required")
	case d.Analyzer == nil:
		return errors.New("inspect: Deps.Analyzer is required")
	case d.Comparator == nil:
		return errors.New("inspect: Deps.Comparator is required")
	case d.Reasoner == nil:
		return errors.New("inspect: Deps.Reasoner is required")
	case d.Corpus == nil:
		return errors.New("inspect: Deps.Corpus is required")
	case d.Sessions == nil:
		return errors.New("inspect: Deps.Sessions is required")
	}
	return nil
}

// Engine runs the inspection pipeline. It is safe for concurrent use;
// concurrent turns for the same session key are serialized by the session
// store's revision guard, so a racing turn fails with a conflict rather
// than corrupting memoized state.
type Engine struct {
	registry   ReferenceRegistry
	detector   Detector
	analyzer   VisionAnalyzer
	comparator Comparator
	reasoner   PolicyReasoner
	corpus     PolicyCorpus
	sessions   session.Store
	cfg        engineConfig
}

// New creates an engine from its dependencies.
func New(deps Deps, opts ...Option) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		registry:   deps.Registry,
		detector:   deps.Detector,
		analyzer:   deps.Analyzer,
		comparator: deps.Comparator,
		reasoner:   deps.Reasoner,
		corpus:     deps.Corpus,
		sessions:   deps.Sessions,
		cfg:        cfg,
	}, nil
}

// Request is one user turn: a session key, the message, and optionally the
// photos that open a fresh inspection. Image order is preserved through
// detection, analysis, and report assembly.
type Request struct {
	SessionID   string
	Images      []ImageRef
	Description string
}

// Result is the consolidated output of a turn. Each field reflects the
// latest value in session state after the turn: stages skipped through
// memoization contribute their previously persisted value, not a blank.
type Result struct {
	DefectText        string
	ComparisonVerdict string
	PolicyDecision    string

	// Executed lists the stages that actually ran this turn, in order.
	Executed []Stage
}

// Invoke runs one turn of the pipeline.
//
// It loads (or creates, on first contact) the session state, overlays the
// turn's inputs, runs the routed stage chain, and commits the merged state.
// The commit is all-or-nothing: a failed turn leaves the persisted session
// exactly as it was before the call.
func (e *Engine) Invoke(ctx context.Context, req Request) (Result, error) {
	if req.SessionID == "" {
		return Result{}, &PreconditionError{SessionID: req.SessionID, Err: ErrEmptySessionID}
	}
	if strings.TrimSpace(req.Description) == "" {
		return Result{}, &PreconditionError{SessionID: req.SessionID, Err: ErrEmptyDescription}
	}

	tctx := newTurnContext(ctx, e.cfg.logger, req.SessionID)
	observability.LogTurnStart(e.cfg.logger, req.SessionID, tctx.TurnID(), len(req.Images))
	start := time.Now()

	var execCtx context.Context = tctx
	var turnSpan trace.Span
	if e.cfg.tracingEnabled {
		execCtx, turnSpan = e.cfg.spans.StartTurnSpan(tctx, req.SessionID, tctx.TurnID())
	}

	result, runErr := e.runTurn(tctx, execCtx, req)

	duration := time.Since(start)
	durationMs := float64(duration.Milliseconds())
	e.cfg.metrics.RecordTurn(execCtx, runErr == nil, duration)
	if e.cfg.tracingEnabled {
		e.cfg.spans.EndSpanWithError(turnSpan, runErr)
	}

	if runErr != nil {
		lastStage := ""
		var stageErr *StageError
		var cancelErr *CancellationError
		if errors.As(runErr, &stageErr) {
			lastStage = stageErr.Stage.String()
		} else if errors.As(runErr, &cancelErr) {
			lastStage = cancelErr.Stage.String()
		}
		observability.LogTurnError(e.cfg.logger, req.SessionID, tctx.TurnID(), runErr, durationMs, lastStage)
		return Result{}, runErr
	}

	observability.LogTurnComplete(e.cfg.logger, req.SessionID, tctx.TurnID(), durationMs, len(result.Executed))
	return result, nil
}

// Session returns the persisted state for an existing session.
// Unlike Invoke, an unknown session key is an error here, never an
// implicit create.
func (e *Engine) Session(ctx context.Context, sessionID string) (State, error) {
	rec, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return State{}, &SessionError{SessionID: sessionID, Op: "load", Err: err}
	}

	var state State
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return State{}, &SessionError{SessionID: sessionID, Op: "decode", Err: err}
	}
	return state, nil
}

// runTurn executes the load / overlay / route / run / commit cycle.
func (e *Engine) runTurn(tctx *turnContext, execCtx context.Context, req Request) (Result, error) {
	rec, state, err := e.loadSession(tctx, req.SessionID)
	if err != nil {
		return Result{}, err
	}

	// Overlay this turn's inputs. Photos are present only on the turn that
	// supplies them; the description is overwritten every turn.
	state.UserImages = req.Images
	state.UserDescription = req.Description

	entry := routeEntry(state)

	// A fresh inspection requires a reference image before any detector
	// call is issued.
	if entry == StageDetect && state.ReferenceImage == "" {
		return Result{}, &PreconditionError{SessionID: req.SessionID, Err: ErrMissingReference}
	}

	final, executed, err := e.runChain(tctx, execCtx, entry, state)
	if err != nil {
		return Result{}, err
	}

	if err := e.commit(tctx, rec, final); err != nil {
		return Result{}, err
	}

	return Result{
		DefectText:        final.DefectText,
		ComparisonVerdict: final.ComparisonVerdict,
		PolicyDecision:    final.PolicyDecision,
		Executed:          executed,
	}, nil
}

// loadSession resolves the session record and its decoded state.
// First contact for a key creates fresh state with the reference image
// resolved from the registry; this create-if-absent path is the only
// implicit recovery from a missing record.
func (e *Engine) loadSession(ctx context.Context, sessionID string) (session.Record, State, error) {
	rec, err := e.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		ref, lookupErr := e.registry.Lookup(ctx, sessionID)
		if lookupErr != nil && !errors.Is(lookupErr, ErrReferenceNotFound) {
			return session.Record{}, State{}, &SessionError{SessionID: sessionID, Op: "resolve reference", Err: lookupErr}
		}

		// Revision 0 makes the commit a create.
		state := State{SessionID: sessionID, ReferenceImage: ref}
		return session.Record{SessionID: sessionID}, state, nil
	}
	if err != nil {
		return session.Record{}, State{}, &SessionError{SessionID: sessionID, Op: "load", Err: err}
	}

	var state State
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return session.Record{}, State{}, &SessionError{SessionID: sessionID, Op: "decode", Err: err}
	}
	return rec, state, nil
}

// runChain executes stages from entry to the end of the pipeline, merging
// each stage's partial update into the state before the next stage runs.
func (e *Engine) runChain(tctx *turnContext, execCtx context.Context, entry Stage, state State) (State, []Stage, error) {
	executed := make([]Stage, 0, 4)

	for st := entry; st != stageEnd; st = st.next() {
		select {
		case <-tctx.Done():
			return state, executed, &CancellationError{Stage: st, Cause: tctx.Err()}
		default:
		}

		update, err := e.runStage(tctx, execCtx, st, state)
		if err != nil {
			return state, executed, err
		}

		if update != nil {
			executed = append(executed, st)
		}
		state = reduce(state, update)
	}

	return state, executed, nil
}

// runStage executes a single stage with panic recovery and observability.
func (e *Engine) runStage(tctx *turnContext, execCtx context.Context, st Stage, state State) (u Update, err error) {
	sctx := tctx.withStage(st)
	observability.LogStageStart(sctx.Logger(), st.String())

	stageCtx := execCtx
	var span trace.Span
	if e.cfg.tracingEnabled {
		stageCtx, span = e.cfg.spans.StartStageSpan(execCtx, st.String())
	}

	start := time.Now()

	defer func() {
		duration := time.Since(start)
		e.cfg.metrics.RecordStageExecution(stageCtx, st.String(), duration, err)
		if e.cfg.tracingEnabled {
			e.cfg.spans.EndSpanWithError(span, err)
		}
		switch {
		case err != nil:
			observability.LogStageError(sctx.Logger(), st.String(), err)
		case u == nil:
			observability.LogStageSkipped(sctx.Logger(), st.String())
		default:
			observability.LogStageComplete(sctx.Logger(), st.String(), float64(duration.Milliseconds()))
		}
	}()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			u = nil
			err = &PanicError{Stage: st, Value: r, Stack: string(debug.Stack())}
		}
	}()

	u, err = e.stageFunc(st)(sctx, state)
	if err != nil {
		err = &StageError{Stage: st, Op: "execute", Err: err}
	}
	return u, err
}

// stageFunc maps a stage identifier to its implementation.
func (e *Engine) stageFunc(st Stage) stageFunc {
	switch st {
	case StageDetect:
		return e.detect
	case StageAnalyze:
		return e.analyze
	case StageCompare:
		return e.compare
	case StageDecide:
		return e.decide
	default:
		return func(Context, State) (Update, error) {
			return nil, errors.New("unknown stage")
		}
	}
}

// commit encodes the final state and writes it in one revision-guarded
// store operation. Nothing from a failed turn is ever persisted.
func (e *Engine) commit(tctx *turnContext, rec session.Record, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return &SessionError{SessionID: state.SessionID, Op: "encode", Err: err}
	}

	rec.State = data
	if _, err := e.sessions.Put(tctx, rec); err != nil {
		return &SessionError{SessionID: state.SessionID, Op: "save", Err: err}
	}

	observability.LogSessionSave(tctx.Logger(), state.SessionID, len(data))
	e.cfg.metrics.RecordSessionSave(tctx, int64(len(data)))
	return nil
}
