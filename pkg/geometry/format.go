package geometry

import "fmt"

// FormatLength formats a length in meters using an adaptive unit:
// millimeters below a centimeter, centimeters below a meter, meters above.
func FormatLength(meters float64) string {
	abs := meters
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 0.01:
		return fmt.Sprintf("%.1f mm", meters*1000)
	case abs < 1.0:
		return fmt.Sprintf("%.1f cm", meters*100)
	default:
		return fmt.Sprintf("%.2f m", meters)
	}
}

// FormatArea formats an area in square meters, switching to square
// centimeters below 0.1 m².
func FormatArea(squareMeters float64) string {
	abs := squareMeters
	if abs < 0 {
		abs = -abs
	}
	if abs < 0.1 {
		return fmt.Sprintf("%.1f cm²", squareMeters*10000)
	}
	return fmt.Sprintf("%.2f m²", squareMeters)
}

// FormatVector formats a 3D vector for display
func FormatVector(v Vector3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
