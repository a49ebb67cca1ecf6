// Package input translates tcell key events into state actions.
package input

import (
	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/seqview/internal/state"
)

// Handler maps key events to actions
type Handler struct{}

// NewHandler creates a new input handler
func NewHandler() *Handler {
	return &Handler{}
}

// HandleKey returns the action for a key event, or nil when the key is
// not bound.
func (h *Handler) HandleKey(ev *tcell.EventKey) statepkg.Action {
	switch ev.Key() {
	case tcell.KeyLeft:
		return statepkg.StepAction{Delta: -1}
	case tcell.KeyRight:
		return statepkg.StepAction{Delta: 1}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return statepkg.QuitAction{}
	case tcell.KeyRune:
		return h.handleRune(ev.Rune())
	}
	return nil
}

func (h *Handler) handleRune(r rune) statepkg.Action {
	switch r {
	case 'a', 'A':
		return statepkg.StepAction{Delta: -1}
	case 'd', 'D':
		return statepkg.StepAction{Delta: 1}
	case 'f', 'F':
		return statepkg.ToggleFitAction{}
	case 'q', 'Q':
		return statepkg.QuitAction{}
	}
	if r >= '0' && r <= '9' {
		return statepkg.SetStepSizeAction{Power: int(r - '0')}
	}
	return nil
}
