// Package scenetest provides a deterministic in-memory scene.Adapter for
// engine tests: an orthographic projection that maps world X/Y directly to
// pixel coordinates, with a configurable uniform transform between model and
// world space.
package scenetest

import (
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene"
)

// Scene is a fake scene.Adapter backed by a plain point slice.
type Scene struct {
	// Points holds model-space positions, mutable through the adapter.
	Points []geometry.Vector3

	// World space is model space scaled by Scale and shifted by Offset.
	Scale  float64
	Offset geometry.Vector3

	// Width and Height bound the virtual viewport for normalized coords.
	Width, Height float64

	// PickRadius is the screen-space hit-test tolerance in pixels.
	PickRadius float64

	// PlaneDepth is the world Z assigned to freehand picks.
	PlaneDepth float64

	Hidden map[int]bool

	// LastSelected records the most recent SetSelectedPoints call.
	LastSelected []int
}

var _ scene.Adapter = (*Scene)(nil)

// New creates a fake scene with an identity transform and the given
// model-space points.
func New(points ...geometry.Vector3) *Scene {
	return &Scene{
		Points:     points,
		Scale:      1,
		Width:      800,
		Height:     600,
		PickRadius: 8,
		Hidden:     make(map[int]bool),
	}
}

func (s *Scene) world(local geometry.Vector3) geometry.Vector3 {
	return local.Mul(s.Scale).Add(s.Offset)
}

func (s *Scene) local(world geometry.Vector3) geometry.Vector3 {
	return world.Sub(s.Offset).Mul(1.0 / s.Scale)
}

// PickPoint returns the nearest visible point within PickRadius pixels.
func (s *Scene) PickPoint(x, y float64) (scene.PointHit, bool) {
	best := scene.PointHit{Index: -1}
	bestDistSq := s.PickRadius * s.PickRadius
	for i, p := range s.Points {
		if s.Hidden[i] {
			continue
		}
		w := s.world(p)
		dx, dy := w.X-x, w.Y-y
		distSq := dx*dx + dy*dy
		if distSq <= bestDistSq {
			best = scene.PointHit{Index: i, World: w, Local: p}
			bestDistSq = distSq
		}
	}
	if best.Index < 0 {
		return scene.PointHit{}, false
	}
	return best, true
}

// PickWorldPoint maps the screen position onto the z=PlaneDepth world plane.
func (s *Scene) PickWorldPoint(x, y float64) (geometry.Vector3, bool) {
	return geometry.NewVector3(x, y, s.PlaneDepth), true
}

// ProjectWorldToScreen maps world X/Y straight to pixels.
func (s *Scene) ProjectWorldToScreen(world geometry.Vector3) (scene.Projection, bool) {
	return scene.Projection{
		X:       world.X,
		Y:       world.Y,
		NX:      world.X / s.Width,
		NY:      world.Y / s.Height,
		Depth:   world.Z,
		Visible: true,
	}, true
}

// WorldToModel converts a world point to model space.
func (s *Scene) WorldToModel(world geometry.Vector3) (geometry.Vector3, bool) {
	if s.Scale == 0 {
		return geometry.Vector3{}, false
	}
	return s.local(world), true
}

// ModelToWorld converts a model point to world space.
func (s *Scene) ModelToWorld(local geometry.Vector3) (geometry.Vector3, bool) {
	return s.world(local), true
}

// PointWorldPosition returns the current world position of a point.
func (s *Scene) PointWorldPosition(index int) (geometry.Vector3, bool) {
	if index < 0 || index >= len(s.Points) {
		return geometry.Vector3{}, false
	}
	return s.world(s.Points[index]), true
}

// ForEachVisiblePoint iterates all non-hidden points.
func (s *Scene) ForEachVisiblePoint(fn func(index int, local, world geometry.Vector3)) {
	for i, p := range s.Points {
		if s.Hidden[i] {
			continue
		}
		fn(i, p, s.world(p))
	}
}

// MutatePointPositions applies mutate atomically over the index list.
func (s *Scene) MutatePointPositions(indices []int, mutate func(local geometry.Vector3, index int) (geometry.Vector3, bool)) bool {
	next := make(map[int]geometry.Vector3, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.Points) {
			return false
		}
		p, ok := mutate(s.Points[i], i)
		if !ok || !p.IsFinite() {
			return false
		}
		next[i] = p
	}
	if len(next) == 0 {
		return false
	}
	for i, p := range next {
		s.Points[i] = p
	}
	return true
}

// SetPointsHidden marks the listed points hidden or visible.
func (s *Scene) SetPointsHidden(indices []int, hidden bool) {
	for _, i := range indices {
		if i < 0 || i >= len(s.Points) {
			continue
		}
		if hidden {
			s.Hidden[i] = true
		} else {
			delete(s.Hidden, i)
		}
	}
}

// ClearHiddenPoints restores every hidden point.
func (s *Scene) ClearHiddenPoints() {
	s.Hidden = make(map[int]bool)
}

// SetSelectedPoints records the selection for assertions.
func (s *Scene) SetSelectedPoints(indices []int) {
	s.LastSelected = append([]int(nil), indices...)
}
