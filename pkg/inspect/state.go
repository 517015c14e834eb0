package inspect

// ImageRef is one photo of the product supplied by the user, identified by
// the view it shows (e.g. "Front View").
type ImageRef struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Region is a reference to a cropped sub-image produced by localization,
// representing one detected object of interest.
type Region struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// State is the session state for one inspection conversation. It is created
// on the first turn for a session key, mutated by each subsequent turn, and
// persisted as a whole at the end of every successful turn.
//
// CroppedRegions, DefectText, and ComparisonVerdict are write-once per
// inspection: once computed for a turn that carried photos they are reused
// on later photo-less turns. PolicyDecision always reflects the most recent
// UserDescription and is never reused.
//
// View-labeled collections are ordered slices rather than maps so that
// fan-out order, report assembly, and representative-region selection are
// deterministic in submission order.
type State struct {
	SessionID         string     `json:"session_id"`
	ReferenceImage    string     `json:"reference_image,omitempty"`
	UserImages        []ImageRef `json:"user_images,omitempty"`
	UserDescription   string     `json:"user_description"`
	CroppedRegions    []Region   `json:"cropped_regions,omitempty"`
	DefectText        string     `json:"defect_text,omitempty"`
	ComparisonVerdict string     `json:"comparison_verdict,omitempty"`
	PolicyDecision    string     `json:"policy_decision,omitempty"`
}

// hasNewImages reports whether the current turn supplied photos.
// Memoized stage outputs are only recomputed when this is true.
func (s State) hasNewImages() bool {
	return len(s.UserImages) > 0
}

// Update is a partial state change produced by one stage. The set of
// implementations is closed: one update type per stage. A nil Update means
// the stage was a no-op and the state passes through unchanged.
//
// Updates are applied by the engine through reduce; stages never mutate
// session state directly.
type Update interface {
	apply(State) State
}

// regionsUpdate is produced by Detect.
type regionsUpdate struct {
	regions []Region
}

func (u regionsUpdate) apply(s State) State {
	s.CroppedRegions = u.regions
	return s
}

// defectUpdate is produced by Analyze.
type defectUpdate struct {
	text string
}

func (u defectUpdate) apply(s State) State {
	s.DefectText = u.text
	return s
}

// verdictUpdate is produced by Compare.
type verdictUpdate struct {
	verdict string
}

func (u verdictUpdate) apply(s State) State {
	s.ComparisonVerdict = u.verdict
	return s
}

// decisionUpdate is produced by Decide.
type decisionUpdate struct {
	decision string
}

func (u decisionUpdate) apply(s State) State {
	s.PolicyDecision = u.decision
	return s
}

// reduce merges a stage's partial update into the session state.
// This is the only place session state changes during a turn; each stage
// observes the reductions of the stages that ran before it.
func reduce(s State, u Update) State {
	if u == nil {
		return s
	}
	return u.apply(s)
}
