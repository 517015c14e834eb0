package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/faultlens/faultlens/pkg/inspect/fault"
)

// decide produces the policy decision for the current user message.
//
// The stage always executes: the decision depends on the latest message
// and is never reused from an earlier turn. When the comparison verdict
// contains the configured mismatch marker, the stage short-circuits to the
// fixed different-product response without consulting the reasoner. The
// reasoner's output is otherwise trusted verbatim.
func (e *Engine) decide(ctx Context, s State) (Update, error) {
	if e.cfg.mismatchMarker != "" && strings.Contains(s.ComparisonVerdict, e.cfg.mismatchMarker) {
		return decisionUpdate{decision: e.cfg.mismatchResponse}, nil
	}

	corpus, err := e.corpus.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policy corpus: %w", err)
	}

	in := DecideInput{
		ComparisonVerdict: s.ComparisonVerdict,
		DefectText:        s.DefectText,
		Description:       s.UserDescription,
		PolicyCorpus:      corpus,
	}

	res := fault.WithRetryContext(ctx, e.cfg.retry,
		func(c context.Context) (string, error) {
			return e.reasoner.Decide(c, in)
		})
	if res.Err != nil {
		return nil, res.Err
	}

	return decisionUpdate{decision: res.Value}, nil
}
