// Package frame implements the frame-acquisition engine: a windowed cache
// of decoded frames around the current index, fed by background workers and
// polled by the interactive thread without blocking.
package frame

import "github.com/kk-code-lab/seqview/internal/imageutil"

// SlotState is the lifecycle of one cached frame index.
type SlotState int

const (
	// SlotPending: a fetch+decode task is queued or in flight.
	SlotPending SlotState = iota
	// SlotReady: the decoded frame is resident.
	SlotReady
	// SlotMissing: the file for the index does not exist. Terminal until
	// the slot leaves the window and is requested again.
	SlotMissing
	// SlotFailed: fetch or decode failed for a reason other than absence.
	// Terminal the same way; never auto-retried in place.
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotReady:
		return "ready"
	case SlotMissing:
		return "missing"
	case SlotFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is a snapshot of one frame slot, safe to hold across redraws.
type Slot struct {
	Index uint64
	State SlotState
	// Image is set only for SlotReady.
	Image *imageutil.Frame
	// Err records the failure reason for SlotMissing and SlotFailed.
	Err error
}

// Result is the outcome of one fetch+decode task, delivered back to the
// cache through the completion path.
type Result struct {
	Index uint64
	Frame *imageutil.Frame
	Err   error
}
