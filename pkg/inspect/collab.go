package inspect

import (
	"context"
	"errors"
)

// Sentinel results from collaborators. These are expected conditions, not
// infrastructure failures.
var (
	// ErrNoRegion is returned by a Detector when no object of interest is
	// found above the confidence threshold. The view is dropped, not failed.
	ErrNoRegion = errors.New("no region of interest found")

	// ErrReferenceNotFound is returned by a ReferenceRegistry when no
	// reference image is registered for a session key.
	ErrReferenceNotFound = errors.New("reference image not found")
)

// ReferenceRegistry resolves the reference image for a session key.
// The engine calls it exactly once per session, at session creation.
type ReferenceRegistry interface {
	// Lookup returns the reference image path for the session, or
	// ErrReferenceNotFound if none is registered.
	Lookup(ctx context.Context, sessionID string) (string, error)
}

// Detector localizes the object of interest in a raw photo.
type Detector interface {
	// Detect returns a reference to a cropped sub-image containing the
	// object, or ErrNoRegion if nothing is found above confidence.
	Detect(ctx context.Context, imagePath string, confidence float64) (string, error)
}

// VisionAnalyzer produces a free-text defect description for one cropped
// region, informed by the user's complaint.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, regionPath, description string) (string, error)
}

// CompareInput carries everything the comparison collaborator needs to
// judge whether the user's item matches the reference product.
type CompareInput struct {
	DefectText     string
	ReferenceImage string
	SampleRegion   string
	Description    string
}

// Comparator checks the user's item against the reference image.
//
// The verdict is free text, but it must embed a recognizable marker when
// the item is a different product so Decide can short-circuit; the marker
// the engine looks for is configurable via WithMismatchMarker.
type Comparator interface {
	Compare(ctx context.Context, in CompareInput) (string, error)
}

// DecideInput carries the full inspection context for the policy reasoner.
type DecideInput struct {
	ComparisonVerdict string
	DefectText        string
	Description       string
	PolicyCorpus      string
}

// PolicyReasoner selects a response scenario (seller fault, user fault,
// no defect, chit-chat) and writes the customer-facing reply. The engine
// trusts its output verbatim.
type PolicyReasoner interface {
	Decide(ctx context.Context, in DecideInput) (string, error)
}

// PolicyCorpus supplies the concatenated text of all policy documents.
// The concatenation order must be deterministic per run.
type PolicyCorpus interface {
	Load(ctx context.Context) (string, error)
}
