// Package state holds the viewer state and the reducer that mutates it.
package state

import (
	"github.com/kk-code-lab/seqview/internal/frame"
	"github.com/kk-code-lab/seqview/internal/sequence"
)

// ViewState is everything the renderer needs to draw a frame of UI.
type ViewState struct {
	Addr sequence.Address

	// Fit scales images up to fill the screen; off keeps small images
	// at native size.
	Fit bool

	ScreenWidth  int
	ScreenHeight int

	Status    string
	LastError error

	Quitting bool
}

// NewViewState returns the state for a freshly opened sequence.
func NewViewState(addr sequence.Address) *ViewState {
	return &ViewState{Addr: addr, Fit: true}
}

// CurrentSlot returns the cache slot for the frame on screen.
func (s *ViewState) CurrentSlot(cache *frame.Cache) (frame.Slot, bool) {
	return cache.Poll(s.Addr.Index)
}
