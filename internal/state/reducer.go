package state

import (
	"fmt"

	"github.com/kk-code-lab/seqview/internal/frame"
	"github.com/kk-code-lab/seqview/internal/source"
)

// Reducer applies actions to state
type Reducer struct {
	cache *frame.Cache
	src   source.Source

	// local sequences get a cheap existence check before a step; remote
	// steps proceed optimistically and let the loader report failures.
	local bool
}

// NewReducer creates a new reducer
func NewReducer(cache *frame.Cache, src source.Source, local bool) *Reducer {
	return &Reducer{cache: cache, src: src, local: local}
}

// Reduce applies an action to state and returns new state
func (r *Reducer) Reduce(state *ViewState, action Action) (*ViewState, error) {
	switch a := action.(type) {

	// ===== NAVIGATION =====

	case StepAction:
		next, ok := r.stepTarget(state.Addr.Index, a.Delta)
		if !ok {
			return state, nil
		}

		if r.local {
			ok, err := r.src.Exists(next)
			if err == nil && !ok {
				state.Status = fmt.Sprintf("No file: %s | %s", state.Addr.Pattern.FileNameFor(next), r.cacheInfo())
				return state, nil
			}
		}

		state.Addr.Index = next
		r.cache.SetCenter(next)
		r.updateStatus(state)
		return state, nil

	case SetStepSizeAction:
		if a.Power < 0 || a.Power > 9 {
			return state, nil
		}
		step := uint64(1)
		for i := 0; i < a.Power; i++ {
			step *= 10
		}
		if step == r.cache.StepSize() {
			return state, nil
		}
		r.cache.SetStepSize(step)
		r.updateStatus(state)
		return state, nil

	// ===== VIEW =====

	case ToggleFitAction:
		state.Fit = !state.Fit
		return state, nil

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		return state, nil

	// ===== LOADER RESULTS =====

	case FrameResultAction:
		applied := r.cache.Apply(a.Result)
		if applied && a.Result.Index == state.Addr.Index {
			r.updateStatus(state)
		}
		return state, nil

	// ===== APPLICATION =====

	case QuitAction:
		state.Quitting = true
		return state, nil
	}

	return state, nil
}

// Refresh recomputes the status line from the current cache contents.
func (r *Reducer) Refresh(state *ViewState) {
	r.updateStatus(state)
}

// stepTarget computes the index Delta steps away. Movement below zero or
// past the top of the index range is refused rather than clamped.
func (r *Reducer) stepTarget(cur uint64, delta int64) (uint64, bool) {
	step := r.cache.StepSize()
	if delta >= 0 {
		move := uint64(delta) * step
		if cur > ^uint64(0)-move {
			return 0, false
		}
		return cur + move, move != 0
	}
	move := uint64(-delta) * step
	if move > cur {
		return 0, false
	}
	return cur - move, true
}

func (r *Reducer) updateStatus(state *ViewState) {
	name := state.Addr.FileNameFor(state.Addr.Index)
	slot, ok := r.cache.Poll(state.Addr.Index)
	switch {
	case ok && slot.State == frame.SlotReady:
		state.Status = fmt.Sprintf("%s | %s | step: %d", name, r.cacheInfo(), r.cache.StepSize())
	case !ok || slot.State == frame.SlotPending:
		state.Status = fmt.Sprintf("Loading %s | %s | step: %d", name, r.cacheInfo(), r.cache.StepSize())
	default:
		state.Status = fmt.Sprintf("Failed to load %s | %s | step: %d", name, r.cacheInfo(), r.cache.StepSize())
		state.LastError = slot.Err
	}
}

func (r *Reducer) cacheInfo() string {
	ready, pending := r.cache.Counts()
	return fmt.Sprintf("cache: %d ready, %d pending", ready, pending)
}
