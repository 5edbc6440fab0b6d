package reactive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/academicworld-backend/internal/logger"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewEngine(log)
}

func TestFinalizeRejectsUnknownDependency(t *testing.T) {
	e := testEngine(t)
	if err := e.AddDerived("a", []string{"missing"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("add derived: %v", err)
	}
	if err := e.Finalize(); err == nil || !strings.Contains(err.Error(), "unknown node") {
		t.Fatalf("expected unknown-node error, got %v", err)
	}
}

func TestFinalizeDetectsCycle(t *testing.T) {
	e := testEngine(t)
	noop := func(ctx context.Context, deps map[string]any) (any, error) { return nil, nil }
	if err := e.AddDerived("a", []string{"b"}, noop); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := e.AddDerived("b", []string{"a"}, noop); err != nil {
		t.Fatalf("add b: %v", err)
	}
	err := e.Finalize()
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestSetInputCascadesInOrder(t *testing.T) {
	e := testEngine(t)
	var trace []string
	if err := e.AddInput("x", 1); err != nil {
		t.Fatalf("add input: %v", err)
	}
	if err := e.AddDerived("double", []string{"x"}, func(ctx context.Context, deps map[string]any) (any, error) {
		trace = append(trace, "double")
		return deps["x"].(int) * 2, nil
	}); err != nil {
		t.Fatalf("add double: %v", err)
	}
	if err := e.AddDerived("quad", []string{"double"}, func(ctx context.Context, deps map[string]any) (any, error) {
		trace = append(trace, "quad")
		return deps["double"].(int) * 2, nil
	}); err != nil {
		t.Fatalf("add quad: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := e.SetInput(context.Background(), "x", 3); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if len(trace) != 2 || trace[0] != "double" || trace[1] != "quad" {
		t.Fatalf("expected [double quad], got %v", trace)
	}
	v, ok := e.Value("quad")
	if !ok || v.(int) != 12 {
		t.Fatalf("expected quad=12, got %v (settled=%v)", v, ok)
	}
}

func TestFailedNodeIsolatesItsSubtree(t *testing.T) {
	e := testEngine(t)
	boom := errors.New("boom")
	if err := e.AddInput("x", 0); err != nil {
		t.Fatalf("add input: %v", err)
	}
	if err := e.AddDerived("bad", []string{"x"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return nil, boom
	}); err != nil {
		t.Fatalf("add bad: %v", err)
	}
	if err := e.AddDerived("downstream", []string{"bad"}, func(ctx context.Context, deps map[string]any) (any, error) {
		t.Fatalf("downstream of a failed node must not compute")
		return nil, nil
	}); err != nil {
		t.Fatalf("add downstream: %v", err)
	}
	if err := e.AddDerived("sibling", []string{"x"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("add sibling: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := e.SetInput(context.Background(), "x", 1); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if err := e.Err("bad"); !errors.Is(err, boom) {
		t.Fatalf("expected bad to record boom, got %v", err)
	}
	if v, ok := e.Value("sibling"); !ok || v != "ok" {
		t.Fatalf("sibling should settle despite failed peer, got %v (settled=%v)", v, ok)
	}
	if _, ok := e.Value("downstream"); ok {
		t.Fatalf("downstream of failed node should stay stale")
	}
}

func TestFireBumpsCountersAndRecomputes(t *testing.T) {
	e := testEngine(t)
	writes := 0
	if err := e.AddCounter("refresh"); err != nil {
		t.Fatalf("add counter: %v", err)
	}
	if err := e.AddDerived("options", []string{"refresh"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return deps["refresh"].(int64), nil
	}); err != nil {
		t.Fatalf("add options: %v", err)
	}
	if err := e.AddMutation("write", []string{"refresh"}, func(ctx context.Context, payload any) error {
		writes++
		return nil
	}); err != nil {
		t.Fatalf("add mutation: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var hooked []int64
	e.OnRefresh(func(counter string, value int64, seq uint64) {
		if counter != "refresh" {
			t.Fatalf("unexpected counter %q", counter)
		}
		hooked = append(hooked, value)
	})

	for i := 0; i < 2; i++ {
		if err := e.Fire(context.Background(), "write", nil); err != nil {
			t.Fatalf("fire %d: %v", i, err)
		}
	}
	if writes != 2 {
		t.Fatalf("expected 2 writes, got %d", writes)
	}
	if v, ok := e.Value("options"); !ok || v.(int64) != 2 {
		t.Fatalf("expected options to see counter=2, got %v (settled=%v)", v, ok)
	}
	if len(hooked) != 2 || hooked[0] != 1 || hooked[1] != 2 {
		t.Fatalf("expected hook values [1 2], got %v", hooked)
	}
}

func TestFailedMutationDoesNotInvalidate(t *testing.T) {
	e := testEngine(t)
	computes := 0
	if err := e.AddCounter("refresh"); err != nil {
		t.Fatalf("add counter: %v", err)
	}
	if err := e.AddDerived("options", []string{"refresh"}, func(ctx context.Context, deps map[string]any) (any, error) {
		computes++
		return nil, nil
	}); err != nil {
		t.Fatalf("add options: %v", err)
	}
	if err := e.AddMutation("write", []string{"refresh"}, func(ctx context.Context, payload any) error {
		return errors.New("store rejected it")
	}); err != nil {
		t.Fatalf("add mutation: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := e.Prime(context.Background()); err != nil {
		t.Fatalf("prime: %v", err)
	}
	primed := computes

	if err := e.Fire(context.Background(), "write", nil); err == nil {
		t.Fatalf("expected mutation error")
	}
	if computes != primed {
		t.Fatalf("failed mutation must not trigger recompute, got %d extra", computes-primed)
	}
	if v, _ := e.Value("refresh"); v.(int64) != 0 {
		t.Fatalf("failed mutation must not bump counter, got %v", v)
	}
}

func TestSupersededRecomputeIsDiscarded(t *testing.T) {
	e := testEngine(t)
	if err := e.AddInput("x", 0); err != nil {
		t.Fatalf("add input: %v", err)
	}
	if err := e.AddDerived("mirror", []string{"x"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return deps["x"], nil
	}); err != nil {
		t.Fatalf("add mirror: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := e.Prime(context.Background()); err != nil {
		t.Fatalf("prime: %v", err)
	}

	// Start a recompute by hand, then invalidate the node with a newer
	// event before committing. The stale commit must be dropped.
	e.mu.Lock()
	e.nodes["mirror"].state = StateStale
	e.nodes["mirror"].stamp = e.seq + 1
	e.mu.Unlock()
	tok, deps, compute, ok := e.beginRecompute("mirror")
	if !ok {
		t.Fatalf("beginRecompute refused")
	}
	stale, err := compute(context.Background(), deps)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	e.mu.Lock()
	e.nodes["mirror"].stamp++
	e.mu.Unlock()
	if e.commit(tok, stale, nil) {
		t.Fatalf("superseded commit must be discarded")
	}
	if _, settled := e.Value("mirror"); settled {
		t.Fatalf("node must stay unsettled until the newer recompute lands")
	}
}

func TestSnapshotReportsStates(t *testing.T) {
	e := testEngine(t)
	if err := e.AddInput("x", 1); err != nil {
		t.Fatalf("add input: %v", err)
	}
	if err := e.AddDerived("y", []string{"x"}, func(ctx context.Context, deps map[string]any) (any, error) {
		return deps["x"], nil
	}); err != nil {
		t.Fatalf("add y: %v", err)
	}
	if err := e.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	byName := func(statuses []NodeStatus, name string) NodeStatus {
		for _, s := range statuses {
			if s.Name == name {
				return s
			}
		}
		t.Fatalf("node %q missing from snapshot", name)
		return NodeStatus{}
	}

	if s := byName(e.Snapshot(), "y"); s.State != "stale" {
		t.Fatalf("expected y stale before prime, got %s", s.State)
	}
	if err := e.Prime(context.Background()); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if s := byName(e.Snapshot(), "y"); s.State != "settled" {
		t.Fatalf("expected y settled after prime, got %s", s.State)
	}
}
