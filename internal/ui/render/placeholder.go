package render

import (
	"fmt"

	"github.com/kk-code-lab/seqview/internal/frame"
)

// placeholderText is shown in the frame area while the current slot has
// no image to paint.
func placeholderText(slot frame.Slot, resident bool, name string) string {
	if !resident {
		return fmt.Sprintf("Loading %s…", name)
	}
	switch slot.State {
	case frame.SlotPending:
		return fmt.Sprintf("Loading %s…", name)
	case frame.SlotMissing:
		return fmt.Sprintf("No file: %s", name)
	case frame.SlotFailed:
		if slot.Err != nil {
			return fmt.Sprintf("Failed to load %s: %v", name, slot.Err)
		}
		return fmt.Sprintf("Failed to load %s", name)
	}
	return fmt.Sprintf("Loading %s…", name)
}
