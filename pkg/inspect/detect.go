package inspect

import (
	"errors"

	"github.com/faultlens/faultlens/pkg/inspect/observability"
)

// detect localizes the object of interest in each photo supplied this turn.
//
// Views are processed sequentially: localization is assumed resource-heavy
// and serialized to avoid contention. A view where nothing is found, or
// where the detector fails, is dropped from the result rather than failing
// the stage; a partial crop set (even an empty one) is a valid outcome.
//
// On a photo-less turn the stage is a no-op.
func (e *Engine) detect(ctx Context, s State) (Update, error) {
	if !s.hasNewImages() {
		return nil, nil
	}

	regions := make([]Region, 0, len(s.UserImages))
	for _, img := range s.UserImages {
		if img.Path == "" {
			continue
		}

		path, err := e.detector.Detect(ctx, img.Path, e.cfg.confidence)
		if errors.Is(err, ErrNoRegion) {
			continue
		}
		if err != nil {
			observability.LogViewSkipped(ctx.Logger(), img.Label, err)
			continue
		}

		regions = append(regions, Region{Label: img.Label, Path: path})
	}

	return regionsUpdate{regions: regions}, nil
}
