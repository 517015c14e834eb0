// Package inspect implements a stateful inspection pipeline for customer
// complaints: object localization, per-view defect analysis, reference
// comparison, and a policy decision, with per-session state that survives
// across conversation turns.
//
// The pipeline is a fixed chain Detect -> Analyze -> Compare -> Decide with
// a conditional entry point: turns that carry photos start at Detect, turns
// without photos go straight to Decide. Stage outputs computed on an earlier
// turn (cropped regions, defect report, comparison verdict) are reused on
// later photo-less turns instead of being recomputed; the policy decision is
// recomputed every turn because it depends on the latest user message.
//
// All analysis models are opaque collaborators behind small interfaces
// (Detector, VisionAnalyzer, Comparator, PolicyReasoner); the engine owns
// only the orchestration, the session state, and the commit semantics: a
// turn's merged state is persisted atomically at the end of the turn, or not
// at all if any stage failed.
//
// Example:
//
//	store := session.NewMemoryStore()
//	engine, err := inspect.New(inspect.Deps{
//	    Registry:   registry,
//	    Detector:   detector,
//	    Analyzer:   analyzer,
//	    Comparator: comparator,
//	    Reasoner:   reasoner,
//	    Corpus:     policy.NewDir("./policies"),
//	    Sessions:   store,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := engine.Invoke(ctx, inspect.Request{
//	    SessionID:   "1001",
//	    Images:      []inspect.ImageRef{{Label: "Front", Path: "front.jpg"}},
//	    Description: "cracked screen",
//	})
package inspect
