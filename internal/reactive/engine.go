package reactive

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yungbote/academicworld-backend/internal/apperr"
	"github.com/yungbote/academicworld-backend/internal/logger"
)

// State tracks where a node sits in its recompute lifecycle.
type State int

const (
	StateStale State = iota
	StateRecomputing
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStale:
		return "stale"
	case StateRecomputing:
		return "recomputing"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type nodeKind int

const (
	kindInput nodeKind = iota
	kindCounter
	kindDerived
	kindMutation
)

// ComputeFunc produces a derived node's value from the current values of its
// dependencies, keyed by node name.
type ComputeFunc func(ctx context.Context, deps map[string]any) (any, error)

// MutationFunc applies a side effect against a backing store. The payload is
// whatever the caller handed to Fire.
type MutationFunc func(ctx context.Context, payload any) error

// RefreshHook observes a counter bump after a successful mutation.
type RefreshHook func(counter string, value int64, seq uint64)

type node struct {
	name    string
	kind    nodeKind
	deps    []string
	compute ComputeFunc
	mutate  MutationFunc
	// counters bumped when this mutation node fires successfully
	counters []string

	value   any
	state   State
	lastErr error
	// stamp is the event sequence of the last invalidation; a recompute
	// started under an older stamp commits nothing.
	stamp uint64
}

// Engine is a dependency graph of named nodes. Inputs and counters hold
// values directly; derived nodes recompute from their dependencies whenever
// an upstream value changes; mutation nodes wrap store writes and invalidate
// through counters. The graph is append-only until Finalize, which fixes the
// evaluation order.
type Engine struct {
	mu        sync.Mutex
	nodes     map[string]*node
	order     []string
	finalized bool
	seq       uint64
	onRefresh RefreshHook
	log       *logger.Logger
}

func NewEngine(baseLog *logger.Logger) *Engine {
	return &Engine{
		nodes: make(map[string]*node),
		log:   baseLog.With("component", "ReactiveEngine"),
	}
}

// OnRefresh installs the counter-bump hook. Must be set before the first
// Fire; the hook runs outside the engine lock.
func (e *Engine) OnRefresh(hook RefreshHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRefresh = hook
}

func (e *Engine) add(n *node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finalized {
		return fmt.Errorf("engine already finalized, cannot add %q", n.name)
	}
	if n.name == "" {
		return fmt.Errorf("node name required")
	}
	if _, exists := e.nodes[n.name]; exists {
		return fmt.Errorf("node %q already registered", n.name)
	}
	e.nodes[n.name] = n
	return nil
}

func (e *Engine) AddInput(name string, initial any) error {
	return e.add(&node{name: name, kind: kindInput, value: initial, state: StateSettled})
}

// AddCounter registers a monotonic int64 node starting at zero. Counters are
// only ever advanced by successful mutations.
func (e *Engine) AddCounter(name string) error {
	return e.add(&node{name: name, kind: kindCounter, value: int64(0), state: StateSettled})
}

func (e *Engine) AddDerived(name string, deps []string, compute ComputeFunc) error {
	if compute == nil {
		return fmt.Errorf("derived node %q requires a compute func", name)
	}
	return e.add(&node{name: name, kind: kindDerived, deps: deps, compute: compute, state: StateStale})
}

func (e *Engine) AddMutation(name string, counters []string, mutate MutationFunc) error {
	if mutate == nil {
		return fmt.Errorf("mutation node %q requires a mutate func", name)
	}
	return e.add(&node{name: name, kind: kindMutation, counters: counters, mutate: mutate, state: StateSettled})
}

// Finalize validates every edge and fixes a topological evaluation order.
// After Finalize the graph is immutable.
func (e *Engine) Finalize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finalized {
		return fmt.Errorf("engine already finalized")
	}

	indegree := make(map[string]int, len(e.nodes))
	dependents := make(map[string][]string, len(e.nodes))
	for name, n := range e.nodes {
		indegree[name] += 0
		for _, dep := range n.deps {
			upstream, ok := e.nodes[dep]
			if !ok {
				return fmt.Errorf("node %q depends on unknown node %q", name, dep)
			}
			if upstream.kind == kindMutation {
				return fmt.Errorf("node %q depends on mutation node %q; depend on its counters instead", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
		for _, counter := range n.counters {
			target, ok := e.nodes[counter]
			if !ok {
				return fmt.Errorf("mutation %q bumps unknown counter %q", name, counter)
			}
			if target.kind != kindCounter {
				return fmt.Errorf("mutation %q bumps %q, which is not a counter", name, counter)
			}
		}
	}

	ready := make([]string, 0, len(e.nodes))
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(e.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		next := dependents[name]
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(order) != len(e.nodes) {
		stuck := make([]string, 0)
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return fmt.Errorf("dependency cycle involving %v", stuck)
	}

	e.order = order
	e.finalized = true
	e.log.Info("dependency graph finalized", "nodes", len(e.nodes))
	return nil
}

// Prime computes every derived node that has never settled. Call once after
// Finalize so the first snapshot is fully populated.
func (e *Engine) Prime(ctx context.Context) error {
	e.mu.Lock()
	if !e.finalized {
		e.mu.Unlock()
		return fmt.Errorf("engine not finalized")
	}
	e.seq++
	seq := e.seq
	dirty := make([]string, 0)
	for _, name := range e.order {
		n := e.nodes[name]
		if n.kind == kindDerived && n.state == StateStale {
			n.stamp = seq
			dirty = append(dirty, name)
		}
	}
	e.mu.Unlock()

	e.recomputeAll(ctx, dirty)
	return nil
}

// SetInput overwrites an input node's value and recomputes everything
// downstream. Returns the event sequence of the change.
func (e *Engine) SetInput(ctx context.Context, name string, value any) (uint64, error) {
	e.mu.Lock()
	if !e.finalized {
		e.mu.Unlock()
		return 0, fmt.Errorf("engine not finalized")
	}
	n, ok := e.nodes[name]
	if !ok {
		e.mu.Unlock()
		return 0, fmt.Errorf("unknown node %q", name)
	}
	if n.kind != kindInput {
		e.mu.Unlock()
		return 0, fmt.Errorf("node %q is not an input", name)
	}
	e.seq++
	seq := e.seq
	n.value = value
	n.stamp = seq
	dirty := e.invalidateLocked(name, seq)
	e.mu.Unlock()

	e.recomputeAll(ctx, dirty)
	return seq, nil
}

// Fire runs a mutation node. On success every counter it names is bumped and
// the counters' dependents recompute; on failure nothing is invalidated and
// the store error comes back to the caller.
func (e *Engine) Fire(ctx context.Context, name string, payload any) error {
	e.mu.Lock()
	if !e.finalized {
		e.mu.Unlock()
		return fmt.Errorf("engine not finalized")
	}
	n, ok := e.nodes[name]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("unknown node %q", name)
	}
	if n.kind != kindMutation {
		e.mu.Unlock()
		return fmt.Errorf("node %q is not a mutation", name)
	}
	mutate := n.mutate
	counters := n.counters
	hook := e.onRefresh
	e.mu.Unlock()

	if err := mutate(ctx, payload); err != nil {
		e.log.Warn("mutation failed", "node", name, "code", apperr.CodeOf(err), "error", err)
		return err
	}

	type bump struct {
		counter string
		value   int64
		seq     uint64
	}
	e.mu.Lock()
	bumps := make([]bump, 0, len(counters))
	dirty := make([]string, 0)
	for _, counter := range counters {
		c := e.nodes[counter]
		e.seq++
		c.value = c.value.(int64) + 1
		c.stamp = e.seq
		bumps = append(bumps, bump{counter: counter, value: c.value.(int64), seq: e.seq})
		dirty = mergeOrdered(e.order, dirty, e.invalidateLocked(counter, e.seq))
	}
	e.mu.Unlock()

	e.recomputeAll(ctx, dirty)
	if hook != nil {
		for _, b := range bumps {
			hook(b.counter, b.value, b.seq)
		}
	}
	return nil
}

// invalidateLocked marks every transitive derived dependent of name stale at
// seq and returns them in evaluation order. Caller holds e.mu.
func (e *Engine) invalidateLocked(name string, seq uint64) []string {
	reached := map[string]bool{name: true}
	dirty := make([]string, 0)
	for _, candidate := range e.order {
		n := e.nodes[candidate]
		if n.kind != kindDerived {
			continue
		}
		for _, dep := range n.deps {
			if reached[dep] {
				reached[candidate] = true
				n.state = StateStale
				n.stamp = seq
				dirty = append(dirty, candidate)
				break
			}
		}
	}
	return dirty
}

func (e *Engine) recomputeAll(ctx context.Context, dirty []string) {
	for _, name := range dirty {
		e.recomputeNode(ctx, name)
	}
}

// recomputeNode runs one derived node's compute outside the lock. If any
// dependency is not settled the node stays stale (a failed upstream isolates
// its subtree without touching siblings).
func (e *Engine) recomputeNode(ctx context.Context, name string) {
	tok, deps, compute, ok := e.beginRecompute(name)
	if !ok {
		return
	}
	value, err := compute(ctx, deps)
	if !e.commit(tok, value, err) {
		e.log.Debug("discarded superseded recompute", "node", name, "seq", tok.stamp)
	}
}

type recomputeToken struct {
	name  string
	stamp uint64
}

func (e *Engine) beginRecompute(name string) (recomputeToken, map[string]any, ComputeFunc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.nodes[name]
	if n == nil || n.kind != kindDerived || n.state != StateStale {
		return recomputeToken{}, nil, nil, false
	}
	deps := make(map[string]any, len(n.deps))
	for _, dep := range n.deps {
		upstream := e.nodes[dep]
		if upstream.kind == kindDerived && upstream.state != StateSettled {
			return recomputeToken{}, nil, nil, false
		}
		deps[dep] = upstream.value
	}
	n.state = StateRecomputing
	return recomputeToken{name: name, stamp: n.stamp}, deps, n.compute, true
}

// commit installs a recompute result unless a newer invalidation stamped the
// node while the compute ran. Reports whether the result was kept.
func (e *Engine) commit(tok recomputeToken, value any, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.nodes[tok.name]
	if n.stamp != tok.stamp {
		return false
	}
	if err != nil {
		n.state = StateFailed
		n.lastErr = err
		e.log.Warn("node recompute failed", "node", tok.name, "code", apperr.CodeOf(err), "error", err)
		return true
	}
	n.value = value
	n.state = StateSettled
	n.lastErr = nil
	return true
}

// Value returns a node's current value. ok is false for unknown nodes and
// for derived nodes that have not settled.
func (e *Engine) Value(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.nodes[name]
	if !ok {
		return nil, false
	}
	if n.kind == kindDerived && n.state != StateSettled {
		return nil, false
	}
	return n.value, true
}

// NodeStatus is a point-in-time view of one node for the snapshot surface.
type NodeStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Seq   uint64 `json:"seq"`
	Error string `json:"error,omitempty"`
}

// Snapshot reports every node's state in evaluation order.
func (e *Engine) Snapshot() []NodeStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	statuses := make([]NodeStatus, 0, len(e.order))
	for _, name := range e.order {
		n := e.nodes[name]
		status := NodeStatus{Name: name, State: n.state.String(), Seq: n.stamp}
		if n.lastErr != nil {
			status.Error = n.lastErr.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Err returns the last recompute error for a node, nil when settled.
func (e *Engine) Err(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n, ok := e.nodes[name]; ok {
		return n.lastErr
	}
	return nil
}

// mergeOrdered unions two already-ordered subsets of order, preserving
// evaluation order and dropping duplicates.
func mergeOrdered(order, a, b []string) []string {
	in := make(map[string]bool, len(a)+len(b))
	for _, name := range a {
		in[name] = true
	}
	for _, name := range b {
		in[name] = true
	}
	out := make([]string, 0, len(in))
	for _, name := range order {
		if in[name] {
			out = append(out, name)
		}
	}
	return out
}
