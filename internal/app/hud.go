package app

import (
	"fmt"
	"time"

	"github.com/rook-computer/wanderspectrum/internal/state"
)

// HUDLines formats the published status for the debug overlay.
func HUDLines(status *state.Store) func() []string {
	return func() []string {
		snap := status.Snapshot()
		lines := []string{"phase " + snap.Phase.String()}
		if snap.Err != "" {
			lines = append(lines, snap.Err)
		}
		if snap.Grid.PixelSize == 0 {
			return lines
		}
		return append(lines,
			fmt.Sprintf("grid %dx%d (%d visible) px %d", snap.Grid.Width, snap.Grid.Height, snap.Grid.VisibleRows, snap.Grid.PixelSize),
			fmt.Sprintf("offset %d velocity %d", snap.Scroll.Offset, snap.Scroll.Velocity),
			fmt.Sprintf("since switch %d flips %d", snap.Scroll.TicksSinceSwitch, snap.Scroll.Flips),
			fmt.Sprintf("frames %d skipped %d", snap.Frames.Presented, snap.Frames.Skipped),
			fmt.Sprintf("tick %s p99 %s", snap.Frames.TickMean.Round(time.Microsecond), snap.Frames.TickP99.Round(time.Microsecond)),
			"center "+snap.Frames.CenterColor,
		)
	}
}
