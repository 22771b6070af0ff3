// Package scene defines the contract between the editing/measurement engines
// and whatever renders the point cloud. The engines never talk to a renderer
// directly; everything they need — hit-testing, projection, coordinate
// conversion, point mutation — goes through an Adapter.
//
// Two coordinate frames are distinguished by convention: model space is the
// cloud's own stable frame, world space is model space composed with the
// object's current live transform. All physical measurements happen in world
// space; all stored geometry lives in model space.
package scene

import "github.com/philipparndt/gosplat/pkg/geometry"

// Projection is the screen-space image of a world point: pixel coordinates,
// normalized view-plane coordinates in [0,1], depth along the view direction
// and a visibility flag (false when behind the camera or outside the
// frustum).
type Projection struct {
	X, Y    float64
	NX, NY  float64
	Depth   float64
	Visible bool
}

// PointHit identifies a picked point of the cloud by index together with its
// current world and model-space positions.
type PointHit struct {
	Index int
	World geometry.Vector3
	Local geometry.Vector3
}

// Adapter is implemented by the rendering side. All geometric queries the
// engines perform go through this interface; query failures are reported via
// ok=false and never as errors.
type Adapter interface {
	// PickPoint hit-tests the nearest visible point under the given screen
	// position.
	PickPoint(x, y float64) (PointHit, bool)

	// PickWorldPoint resolves a screen position to a freehand world point
	// when no point-level hit is required.
	PickWorldPoint(x, y float64) (geometry.Vector3, bool)

	// ProjectWorldToScreen projects a world point onto the view plane.
	ProjectWorldToScreen(world geometry.Vector3) (Projection, bool)

	// WorldToModel and ModelToWorld convert between the two frames.
	WorldToModel(world geometry.Vector3) (geometry.Vector3, bool)
	ModelToWorld(local geometry.Vector3) (geometry.Vector3, bool)

	// PointWorldPosition returns the current world position of a point.
	PointWorldPosition(index int) (geometry.Vector3, bool)

	// ForEachVisiblePoint iterates every point that is neither hidden nor
	// culled, passing its index and both positions.
	ForEachVisiblePoint(fn func(index int, local, world geometry.Vector3))

	// MutatePointPositions applies mutate to the model-space position of
	// every listed point. The change is atomic over the index list: if any
	// mutation is rejected (mutate returns ok=false) no point moves.
	// Reports whether anything changed.
	MutatePointPositions(indices []int, mutate func(local geometry.Vector3, index int) (geometry.Vector3, bool)) bool

	// SetPointsHidden soft-deletes (or restores) the listed points. Hidden
	// points are excluded from rendering and hit-testing but keep their data.
	SetPointsHidden(indices []int, hidden bool)

	// ClearHiddenPoints restores every hidden point.
	ClearHiddenPoints()

	// SetSelectedPoints notifies the renderer of the current selection for
	// highlighting.
	SetSelectedPoints(indices []int)
}
