package state

import "github.com/kk-code-lab/seqview/internal/frame"

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

// StepAction moves the current index by Delta multiplied by the step size.
type StepAction struct {
	Delta int64 // +1 forward, -1 backward
}

// SetStepSizeAction sets the step size to 10^Power frames.
type SetStepSizeAction struct {
	Power int // 0..9
}

// ===== VIEW ACTIONS =====

type ToggleFitAction struct{}

type ResizeAction struct {
	Width  int
	Height int
}

// ===== LOADER ACTIONS =====

// FrameResultAction carries a finished fetch from a loader worker.
type FrameResultAction struct {
	Result frame.Result
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
