package ai

import (
	"github.com/blockduel/blockduel-go/internal/engine"
)

// Driver executes a planner's placements against the state machine one
// action per think tick: rotate until the footprint matches, then shift one
// column at a time, then fast-drop. It re-plans when the board changed under
// it (garbage was applied) or when a requested action made no progress.
type Driver struct {
	planner *Planner
	plan    *Plan
}

// NewDriver creates a driver around a planner.
func NewDriver(planner *Planner) *Driver {
	return &Driver{planner: planner}
}

// Invalidate discards the current plan. Callers invoke it after applying
// pending garbage, since the placement was chosen against the old board.
func (d *Driver) Invalidate() {
	d.plan = nil
}

// Act performs one AI think tick and returns the new state plus the step
// result of any gravity motion it caused. A lock (from the fast drop or a
// forced descent) always clears the plan so the next tick plans the fresh
// piece.
func (d *Driver) Act(st engine.State, gen *engine.Generator) (engine.State, engine.StepResult) {
	if st.GameOver {
		return st, engine.StepResult{}
	}

	if d.plan == nil {
		plan, ok := d.planner.Plan(st.Board, st.Current, st.Next)
		if !ok {
			// No legal placement anywhere: accept the forced lock and the
			// game over it eventually causes.
			return d.step(st, gen)
		}
		d.plan = &plan
	}

	if st.CurrentShape.Signature() != d.plan.TargetSig {
		rotated := st.RotateCurrent()
		if rotated.CurrentShape.Signature() == st.CurrentShape.Signature() {
			// Rotation is blocked here; descend one row and re-plan from
			// whatever position we end up in.
			d.plan = nil
			return d.step(st, gen)
		}
		return rotated, engine.StepResult{}
	}

	if st.Pos.Col != d.plan.TargetCol {
		dir := 1
		if d.plan.TargetCol < st.Pos.Col {
			dir = -1
		}
		moved := st.MoveHorizontal(dir)
		if moved.Pos.Col == st.Pos.Col {
			// Stuck against an obstacle; the plan is unreachable.
			d.plan = nil
			return d.step(st, gen)
		}
		return moved, engine.StepResult{}
	}

	// Aligned: fast-drop to the lock.
	res := engine.StepResult{}
	for !res.Locked && !st.GameOver {
		st, res = st.StepDown(gen)
	}
	d.plan = nil
	return st, res
}

// step performs a single gravity tick, clearing the plan on lock.
func (d *Driver) step(st engine.State, gen *engine.Generator) (engine.State, engine.StepResult) {
	st, res := st.StepDown(gen)
	if res.Locked {
		d.plan = nil
	}
	return st, res
}
