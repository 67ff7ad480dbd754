package shadows

import (
	"fmt"
	"os"
)

// debugLog prints timing and pass stats to stderr.
func debugLog(stats FrameStats) {
	_, _ = fmt.Fprintf(os.Stderr,
		"[shadows] frame %d | capture: %v | mask: %v | total: %v\n",
		stats.Frame, stats.CaptureTime, stats.MaskTime, stats.CaptureTime+stats.MaskTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[shadows] casters: %d | overlays: %d | lights: %d\n",
		stats.Casters, stats.Overlays, stats.Lights)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("shadows debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[shadows] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations, which lack a Scene pointer, can check it cheaply.
var globalDebug bool
