package views

import (
	"fmt"
	"math"
	"strconv"
)

// Boot status codes reported by the engine.
const (
	StatusStartingRenderer = 1
	StatusFinalizing       = 2
	StatusLoadingShards    = 3
	StatusReady            = 4
)

// StatusText maps a boot status code to its splash line. Unknown codes
// render as "".
func StatusText(code int) string {
	switch code {
	case StatusStartingRenderer:
		return "Starting renderer..."
	case StatusFinalizing:
		return "Finalizing..."
	case StatusLoadingShards:
		return "Loading shards..."
	case StatusReady:
		return "Enjoy!"
	default:
		return ""
	}
}

// InitialCameraText is shown before the engine reports a camera position.
const InitialCameraText = "(0,0) x1"

// CameraText renders the camera readout "(x,y) xzoom". Coordinates use two
// decimals; zoom is rounded to two decimals and printed in its shortest form.
func CameraText(x, y, zoom float64) string {
	zoom = round2(zoom)
	return fmt.Sprintf("(%.2f,%.2f) x%s", round2(x), round2(y),
		strconv.FormatFloat(zoom, 'f', -1, 64))
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		// avoid "-0.00"
		return 0
	}
	return r
}
