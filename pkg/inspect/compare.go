package inspect

import (
	"context"

	"github.com/faultlens/faultlens/pkg/inspect/fault"
)

// compare checks the detected product against the session's reference
// image. The first region in label order stands in for the user's item;
// the full defect report and complaint give the comparator its context.
//
// A missing reference image is a hard precondition failure, never a skip.
// The stage is a no-op when there are no regions, or when a verdict from
// an earlier turn exists and this turn brought no new photos.
func (e *Engine) compare(ctx Context, s State) (Update, error) {
	if len(s.CroppedRegions) == 0 {
		return nil, nil
	}
	if s.ComparisonVerdict != "" && !s.hasNewImages() {
		return nil, nil
	}
	if s.ReferenceImage == "" {
		return nil, &PreconditionError{SessionID: s.SessionID, Err: ErrMissingReference}
	}

	in := CompareInput{
		DefectText:     s.DefectText,
		ReferenceImage: s.ReferenceImage,
		SampleRegion:   s.CroppedRegions[0].Path,
		Description:    s.UserDescription,
	}

	res := fault.WithRetryContext(ctx, e.cfg.retry,
		func(c context.Context) (string, error) {
			return e.comparator.Compare(c, in)
		})
	if res.Err != nil {
		return nil, res.Err
	}

	return verdictUpdate{verdict: res.Value}, nil
}
