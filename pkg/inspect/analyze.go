package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/faultlens/faultlens/pkg/inspect/fault"
)

// analyze produces one defect description per detected region and
// consolidates them into a single report.
//
// Calls fan out across a bounded worker pool (degree cfg.concurrency) and
// the report is reassembled in region order, not completion order, so the
// consolidated text is deterministic regardless of call latency. Any
// single region failure fails the whole stage: downstream comparison and
// policy reasoning assume a complete defect picture, and a silently
// partial report would produce misleading decisions.
//
// The stage is a no-op when there are no regions, or when a defect report
// from an earlier turn exists and this turn brought no new photos.
func (e *Engine) analyze(ctx Context, s State) (Update, error) {
	if len(s.CroppedRegions) == 0 {
		return nil, nil
	}
	if s.DefectText != "" && !s.hasNewImages() {
		return nil, nil
	}

	reports, err := mapBounded(ctx, e.cfg.concurrency, s.CroppedRegions,
		func(callCtx context.Context, _ int, r Region) (string, error) {
			res := fault.WithRetryContext(callCtx, e.cfg.retry,
				func(c context.Context) (string, error) {
					return e.analyzer.Analyze(c, r.Path, s.UserDescription)
				})
			if res.Err != nil {
				return "", fmt.Errorf("view %s: %w", r.Label, res.Err)
			}
			return fmt.Sprintf("View [%s]: %s", r.Label, res.Value), nil
		})
	if err != nil {
		return nil, err
	}

	return defectUpdate{text: strings.Join(reports, "\n")}, nil
}
