// File: internal/actions/coords.go
package actions

// logicalGridMax is the extent of the resolution-independent grid the model
// uses to describe screen positions.
const logicalGridMax = 1000

// LogicalPoint is a coordinate pair on the [0,1000] grid. Out-of-range
// values pass through the conversion arithmetically; there is no clamping.
type LogicalPoint struct {
	X float64
	Y float64
}

// ToAbsolute maps a logical point to absolute device pixels. Truncates
// toward zero rather than rounding, matching downstream pixel addressing.
func ToAbsolute(p LogicalPoint, screenWidth, screenHeight int) (int, int) {
	x := int(p.X / logicalGridMax * float64(screenWidth))
	y := int(p.Y / logicalGridMax * float64(screenHeight))
	return x, y
}
