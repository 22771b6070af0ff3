package geometry

import "math"

// Axis indices shared across the selection and measurement engines.
// AxisNone marks a segment that was committed without snapping.
const (
	AxisNone = -1
	AxisX    = 0
	AxisY    = 1
	AxisZ    = 2
)

// DefaultSnapTolerance is the maximum perpendicular fraction of the total
// displacement at which a point still snaps onto a cardinal axis.
const DefaultSnapTolerance = 0.12

// AxisName returns "X", "Y" or "Z" for a valid axis index, "" otherwise
func AxisName(axis int) string {
	switch axis {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return ""
}

// DominantAxis returns the axis with the largest absolute component of the
// displacement from origin to p, or AxisNone for a zero displacement.
func DominantAxis(origin, p Vector3) int {
	d := p.Sub(origin)
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	if ax == 0 && ay == 0 && az == 0 {
		return AxisNone
	}
	if ax >= ay && ax >= az {
		return AxisX
	}
	if ay >= ax && ay >= az {
		return AxisY
	}
	return AxisZ
}

// SnapToAxis constrains p to lie on a cardinal axis through origin when the
// displacement is nearly axis-aligned. The displacement snaps onto its
// dominant axis when the perpendicular component is at most tolerance times
// the total length. Returns the (possibly snapped) point and the axis index,
// or AxisNone when no snap applies.
func SnapToAxis(origin, p Vector3, tolerance float64) (Vector3, int) {
	d := p.Sub(origin)
	total := d.Length()
	if total == 0 || tolerance <= 0 {
		return p, AxisNone
	}

	axis := DominantAxis(origin, p)
	along := d.Component(axis)
	perp := math.Sqrt(total*total - along*along)
	if perp > tolerance*total {
		return p, AxisNone
	}

	snapped := origin.WithComponent(axis, origin.Component(axis)+along)
	return snapped, axis
}

// AxisDeltas returns the signed displacement from a to b decomposed onto the
// three cardinal axes.
func AxisDeltas(a, b Vector3) [3]float64 {
	d := b.Sub(a)
	return [3]float64{d.X, d.Y, d.Z}
}
