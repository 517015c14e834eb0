package inspect

// routeEntry selects the pipeline entry point for a turn.
//
// A turn that carries photos is a fresh inspection and enters at Detect;
// a turn without photos is a follow-up message and enters at Decide,
// reusing the inspection results persisted on an earlier turn.
//
// routeEntry is a pure function of the overlaid state and has no failure
// modes.
func routeEntry(s State) Stage {
	if s.hasNewImages() {
		return StageDetect
	}
	return StageDecide
}
