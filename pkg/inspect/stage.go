package inspect

// Stage identifies one node of the inspection pipeline. The set is closed:
// the pipeline is a fixed chain, not a user-extensible graph.
type Stage int

const (
	// StageDetect localizes the object of interest in each supplied photo.
	StageDetect Stage = iota

	// StageAnalyze produces a defect report for each detected region.
	StageAnalyze

	// StageCompare checks the detected product against the reference image.
	StageCompare

	// StageDecide produces the policy decision for the current user message.
	StageDecide
)

// stageEnd marks pipeline termination. It is never executed.
const stageEnd Stage = -1

// String returns the stage name used in logs, metrics, and spans.
func (st Stage) String() string {
	switch st {
	case StageDetect:
		return "detect"
	case StageAnalyze:
		return "analyze"
	case StageCompare:
		return "compare"
	case StageDecide:
		return "decide"
	case stageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// next returns the stage that follows st on the fresh-inspection chain.
// Decide is the terminal stage on both entry paths.
func (st Stage) next() Stage {
	switch st {
	case StageDetect:
		return StageAnalyze
	case StageAnalyze:
		return StageCompare
	case StageCompare:
		return StageDecide
	default:
		return stageEnd
	}
}

// stageFunc is the signature shared by all stage implementations.
// Stages receive the turn context and the current state, and return a
// partial update for the engine to merge (nil for a no-op).
type stageFunc func(ctx Context, state State) (Update, error)
