package limits

import (
	"fmt"
	"time"
)

// Kind names the budgets a Governor enforces.
type Kind string

const (
	Steps  Kind = "steps"
	Depth  Kind = "depth"
	Wall   Kind = "time"
	Memory Kind = "memory"
)

// Config is fixed at session construction; zero means unlimited.
type Config struct {
	MaxSteps  int64
	MaxDepth  int
	MaxWall   time.Duration
	MaxMemory int64
}

// LimitError reports which budget ran out. Limit is the configured cap in
// the budget's own unit (count, nanoseconds or bytes).
type LimitError struct {
	Kind  Kind
	Limit int64
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case Steps:
		return fmt.Sprintf("max steps exceeded (%d)", e.Limit)
	case Depth:
		return fmt.Sprintf("max recursion depth exceeded (%d)", e.Limit)
	case Wall:
		return fmt.Sprintf("max wall time exceeded (%s)", time.Duration(e.Limit))
	case Memory:
		return fmt.Sprintf("max memory exceeded (%d bytes)", e.Limit)
	default:
		return fmt.Sprintf("limit exceeded (%s)", e.Kind)
	}
}

// Governor owns the resource counters of one evaluation session. It is
// consulted only by the evaluator; counters reset by constructing a fresh
// Governor.
type Governor struct {
	cfg    Config
	steps  int64
	depth  int
	memory int64
	start  time.Time
	now    func() time.Time // swappable in tests
}

func NewGovernor(cfg Config) *Governor {
	g := &Governor{cfg: cfg, now: time.Now}
	g.start = g.now()
	return g
}

func (g *Governor) Steps() int64  { return g.steps }
func (g *Governor) Depth() int    { return g.depth }
func (g *Governor) Memory() int64 { return g.memory }

// ChargeStep accounts for one evaluation step. The charge is refused once
// the budget is spent, so with MaxSteps = N exactly N charges succeed.
// The wall clock is checked on the same cadence.
func (g *Governor) ChargeStep() error {
	if g == nil {
		return nil
	}
	if g.cfg.MaxSteps > 0 && g.steps >= g.cfg.MaxSteps {
		return &LimitError{Kind: Steps, Limit: g.cfg.MaxSteps}
	}
	g.steps++
	if g.cfg.MaxWall > 0 && g.now().Sub(g.start) > g.cfg.MaxWall {
		return &LimitError{Kind: Wall, Limit: int64(g.cfg.MaxWall)}
	}
	return nil
}

// EnterCall charges one level of call depth. It fails before the call body
// runs; every exit path must pair it with ExitCall.
func (g *Governor) EnterCall() error {
	if g == nil {
		return nil
	}
	if g.cfg.MaxDepth > 0 && g.depth+1 > g.cfg.MaxDepth {
		return &LimitError{Kind: Depth, Limit: int64(g.cfg.MaxDepth)}
	}
	g.depth++
	return nil
}

func (g *Governor) ExitCall() {
	if g == nil || g.depth == 0 {
		return
	}
	g.depth--
}

// ChargeMemory accounts for n bytes of script-visible allocation.
func (g *Governor) ChargeMemory(n int64) error {
	if g == nil || g.cfg.MaxMemory == 0 || n <= 0 {
		return nil
	}
	if g.memory+n > g.cfg.MaxMemory {
		return &LimitError{Kind: Memory, Limit: g.cfg.MaxMemory}
	}
	g.memory += n
	return nil
}

// Remaining reports budget left for kind; -1 means unlimited.
func (g *Governor) Remaining(kind Kind) int64 {
	if g == nil {
		return -1
	}
	switch kind {
	case Steps:
		if g.cfg.MaxSteps == 0 {
			return -1
		}
		return g.cfg.MaxSteps - g.steps
	case Depth:
		if g.cfg.MaxDepth == 0 {
			return -1
		}
		return int64(g.cfg.MaxDepth - g.depth)
	case Wall:
		if g.cfg.MaxWall == 0 {
			return -1
		}
		left := int64(g.cfg.MaxWall) - int64(g.now().Sub(g.start))
		if left < 0 {
			return 0
		}
		return left
	case Memory:
		if g.cfg.MaxMemory == 0 {
			return -1
		}
		return g.cfg.MaxMemory - g.memory
	default:
		return -1
	}
}
