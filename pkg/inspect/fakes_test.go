package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/faultlens/faultlens/pkg/inspect/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRegistry resolves reference images from a fixed map.
type fakeRegistry struct {
	mu    sync.Mutex
	refs  map[string]string
	calls int
}

func (f *fakeRegistry) Lookup(_ context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	ref, ok := f.refs[sessionID]
	if !ok {
		return "", ErrReferenceNotFound
	}
	return ref, nil
}

// fakeDetector crops by prefixing the image path. Per-path errors can be
// injected through errFor.
type fakeDetector struct {
	mu     sync.Mutex
	calls  []string
	errFor map[string]error
}

func (f *fakeDetector) Detect(_ context.Context, imagePath string, _ float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, imagePath)
	if err, ok := f.errFor[imagePath]; ok {
		return "", err
	}
	return "crop_" + imagePath, nil
}

func (f *fakeDetector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeAnalyzer describes each region, with optional per-region latency and
// injected errors to exercise completion-order independence and failure
// propagation.
type fakeAnalyzer struct {
	mu        sync.Mutex
	calls     []string
	delayFor  map[string]time.Duration
	errFor    map[string]error
	failFirst map[string]int
	panicOn   string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, regionPath, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, regionPath)
	delay := f.delayFor[regionPath]
	err := f.errFor[regionPath]
	if err == nil && f.failFirst[regionPath] > 0 {
		f.failFirst[regionPath]--
		err = errors.New("connection refused")
	}
	shouldPanic := f.panicOn != "" && f.panicOn == regionPath
	f.mu.Unlock()

	if shouldPanic {
		panic("analyzer exploded")
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "inspected " + regionPath, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeComparator returns a fixed verdict.
type fakeComparator struct {
	mu      sync.Mutex
	verdict string
	err     error
	calls   int
	last    CompareInput
}

func (f *fakeComparator) Compare(_ context.Context, in CompareInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = in
	if f.err != nil {
		return "", f.err
	}
	return f.verdict, nil
}

func (f *fakeComparator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeReasoner echoes the user message so tests can observe that the
// decision tracks the latest description.
type fakeReasoner struct {
	mu     sync.Mutex
	err    error
	calls  int
	panics bool
	last   DecideInput
}

func (f *fakeReasoner) Decide(_ context.Context, in DecideInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = in
	if f.panics {
		panic("reasoner exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("decision for %q", in.Description), nil
}

func (f *fakeReasoner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// staticCorpus is a fixed policy corpus.
type staticCorpus string

func (s staticCorpus) Load(context.Context) (string, error) {
	return string(s), nil
}

// testHarness bundles an engine with its fakes for inspection.
type testHarness struct {
	engine     *Engine
	registry   *fakeRegistry
	detector   *fakeDetector
	analyzer   *fakeAnalyzer
	comparator *fakeComparator
	reasoner   *fakeReasoner
	store      *session.MemoryStore
}

// newTestHarness builds an engine over fakes with a reference image
// registered for session "1001".
func newTestHarness(opts ...Option) *testHarness {
	h := &testHarness{
		registry:   &fakeRegistry{refs: map[string]string{"1001": "ref.jpg"}},
		detector:   &fakeDetector{},
		analyzer:   &fakeAnalyzer{},
		comparator: &fakeComparator{verdict: "VERDICT: MATCH. Logo and shape align."},
		reasoner:   &fakeReasoner{},
		store:      session.NewMemoryStore(),
	}

	engineOpts := append([]Option{WithLogger(discardLogger())}, opts...)
	engine, err := New(Deps{
		Registry:   h.registry,
		Detector:   h.detector,
		Analyzer:   h.analyzer,
		Comparator: h.comparator,
		Reasoner:   h.reasoner,
		Corpus:     staticCorpus("returns within 30 days"),
		Sessions:   h.store,
	}, engineOpts...)
	if err != nil {
		panic(err)
	}

	h.engine = engine
	return h
}

func twoViewImages() []ImageRef {
	return []ImageRef{
		{Label: "Front", Path: "f.jpg"},
		{Label: "Back", Path: "b.jpg"},
	}
}
