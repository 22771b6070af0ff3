package measure

import (
	"fmt"

	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene"
)

// SegmentOverlay is a render-ready projection of one segment: endpoint
// screen positions, the formatted label and where to draw it.
type SegmentOverlay struct {
	ID       string
	Name     string
	Start    scene.Projection
	End      scene.Projection
	LabelX   float64
	LabelY   float64
	Label    string
	Axis     int
	Visible  bool
	Length   float64
	ChainSum float64
}

// AreaOverlay is a render-ready projection of one area polygon
type AreaOverlay struct {
	ID        string
	Name      string
	Vertices  []scene.Projection
	Label     string
	Visible   bool
	Area      float64
	Perimeter float64
}

// SegmentOverlays projects every committed segment to screen space.
// A segment is Visible only when both endpoints project in front of the
// camera and inside the viewport.
func (e *Engine) SegmentOverlays() []SegmentOverlay {
	overlays := make([]SegmentOverlay, 0, len(e.segments))
	for _, s := range e.segments {
		overlay := SegmentOverlay{ID: s.ID, Name: s.Name, Axis: s.Axis}

		startWorld, endWorld, ok := e.segmentEndpoints(s)
		if ok {
			startProj, startOK := e.scene.ProjectWorldToScreen(startWorld)
			endProj, endOK := e.scene.ProjectWorldToScreen(endWorld)
			overlay.Start = startProj
			overlay.End = endProj
			overlay.Visible = startOK && endOK && startProj.Visible && endProj.Visible
			overlay.LabelX = (startProj.X + endProj.X) / 2
			overlay.LabelY = (startProj.Y + endProj.Y) / 2
			overlay.Length = startWorld.Distance(endWorld) * e.scale
			overlay.Label = geometry.FormatLength(overlay.Length)
			if chain, ok := e.ChainTotal(s.ID); ok && chain > overlay.Length {
				overlay.ChainSum = chain
				overlay.Label = fmt.Sprintf("%s (Σ %s)", overlay.Label, geometry.FormatLength(chain))
			}
		}

		overlays = append(overlays, overlay)
	}
	return overlays
}

// AreaOverlays projects every committed area polygon to screen space
func (e *Engine) AreaOverlays() []AreaOverlay {
	overlays := make([]AreaOverlay, 0, len(e.areas))
	for _, a := range e.areas {
		overlay := AreaOverlay{
			ID:       a.ID,
			Name:     a.Name,
			Vertices: make([]scene.Projection, 0, len(a.Vertices)),
		}

		world, ok := e.areaWorldVertices(a)
		if ok {
			overlay.Visible = true
			for _, w := range world {
				proj, projOK := e.scene.ProjectWorldToScreen(w)
				if !projOK || !proj.Visible {
					overlay.Visible = false
				}
				overlay.Vertices = append(overlay.Vertices, proj)
			}
			overlay.Area = geometry.PolygonArea(world) * e.scale * e.scale
			overlay.Perimeter = geometry.PolygonPerimeter(world) * e.scale
			overlay.Label = fmt.Sprintf("%s, %s", geometry.FormatArea(overlay.Area), geometry.FormatLength(overlay.Perimeter))
		}

		overlays = append(overlays, overlay)
	}
	return overlays
}

// PendingOverlay projects the in-progress area ring for rendering
func (e *Engine) PendingOverlay() []scene.Projection {
	projections := make([]scene.Projection, 0, len(e.pendingVerts))
	for _, v := range e.pendingVerts {
		world, ok := e.scene.ModelToWorld(v)
		if !ok {
			continue
		}
		proj, ok := e.scene.ProjectWorldToScreen(world)
		if !ok {
			continue
		}
		projections = append(projections, proj)
	}
	return projections
}

// HitTestSegmentEndpoint finds a committed segment endpoint within radius
// pixels of a screen position, for starting an endpoint drag. Returns the
// segment id and which end (0=start, 1=end).
func (e *Engine) HitTestSegmentEndpoint(x, y, radius float64) (string, int, bool) {
	bestID := ""
	bestEnd := 0
	bestDistSq := radius * radius

	for _, s := range e.segments {
		startWorld, endWorld, ok := e.segmentEndpoints(s)
		if !ok {
			continue
		}
		for end, world := range []geometry.Vector3{startWorld, endWorld} {
			proj, ok := e.scene.ProjectWorldToScreen(world)
			if !ok || !proj.Visible {
				continue
			}
			dx, dy := proj.X-x, proj.Y-y
			if distSq := dx*dx + dy*dy; distSq < bestDistSq {
				bestDistSq = distSq
				bestID = s.ID
				bestEnd = end
			}
		}
	}

	if bestID == "" {
		return "", 0, false
	}
	return bestID, bestEnd, true
}

// HitTestAreaVertex finds an area vertex within radius pixels of a screen
// position, for starting a vertex drag.
func (e *Engine) HitTestAreaVertex(x, y, radius float64) (string, int, bool) {
	bestID := ""
	bestVertex := 0
	bestDistSq := radius * radius

	for _, a := range e.areas {
		for i, v := range a.Vertices {
			world, ok := e.scene.ModelToWorld(v)
			if !ok {
				continue
			}
			proj, ok := e.scene.ProjectWorldToScreen(world)
			if !ok || !proj.Visible {
				continue
			}
			dx, dy := proj.X-x, proj.Y-y
			if distSq := dx*dx + dy*dy; distSq < bestDistSq {
				bestDistSq = distSq
				bestID = a.ID
				bestVertex = i
			}
		}
	}

	if bestID == "" {
		return "", 0, false
	}
	return bestID, bestVertex, true
}
