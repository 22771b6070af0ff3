package measure

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene"
)

// Mode selects the active measurement interaction
type Mode int

const (
	ModeNone Mode = iota
	ModeDistance
	ModeArea
)

var (
	ErrNoPoint       = errors.New("no point found here")
	ErrNeedVertices  = errors.New("polygon needs at least 3 vertices")
	ErrInvalidLength = errors.New("length must be positive and finite")
	ErrZeroLength    = errors.New("cannot rescale from a zero-length segment")
)

// Node is an anchor that one or more measurement endpoints reference by
// identity. Local is model space. PointIndex links the node to a live cloud
// point when it was created by picking one; -1 for freehand placement.
type Node struct {
	ID         string
	Local      geometry.Vector3
	PointIndex int
}

// Segment is a distance measurement between two shared nodes. Axis records
// whether the segment was committed with axis-snapping active.
type Segment struct {
	ID          string
	Name        string
	StartNodeID string
	EndNodeID   string
	Axis        int
}

// Area is a closed polygon annotation. Vertices are a model-space ring;
// VertexPointIndices is parallel, -1 for freehand vertices.
type Area struct {
	ID                 string
	Name               string
	Vertices           []geometry.Vector3
	VertexPointIndices []int
}

// resolved is an endpoint candidate produced from a screen position
type resolved struct {
	local      geometry.Vector3
	world      geometry.Vector3
	pointIndex int
}

// Engine maintains the measurement graph: shared nodes, distance segments and
// area polygons, plus the global calibration scale. All stored coordinates are
// model space; every reported quantity is computed in world space and
// multiplied by the scale.
type Engine struct {
	scene scene.Adapter

	mode  Mode
	scale float64

	nodes    map[string]*Node
	segments []*Segment
	areas    []*Area

	anchorID       string
	pendingVerts   []geometry.Vector3
	pendingIndices []int

	segmentCounter int
	areaCounter    int

	snapTolerance float64
	onChange      func()
}

// NewEngine creates an empty measurement engine over the given scene
func NewEngine(sc scene.Adapter) *Engine {
	return &Engine{
		scene:         sc,
		scale:         1,
		nodes:         make(map[string]*Node),
		snapTolerance: geometry.DefaultSnapTolerance,
	}
}

// SetOnChange registers a hook invoked after every persistent mutation
func (e *Engine) SetOnChange(fn func()) {
	e.onChange = fn
}

// SetSnapTolerance overrides the axis-snap tolerance ratio
func (e *Engine) SetSnapTolerance(tolerance float64) {
	if tolerance >= 0 {
		e.snapTolerance = tolerance
	}
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Mode returns the active interaction mode
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode switches the interaction mode, discarding any half-built
// segment or polygon.
func (e *Engine) SetMode(mode Mode) {
	if mode == e.mode {
		return
	}
	e.mode = mode
	e.CancelPending()
}

// Scale returns the global calibration multiplier
func (e *Engine) Scale() float64 {
	return e.scale
}

// Segments returns all committed distance segments
func (e *Engine) Segments() []*Segment {
	return e.segments
}

// Areas returns all committed area polygons
func (e *Engine) Areas() []*Area {
	return e.areas
}

// Node looks up a shared node by id
func (e *Engine) Node(id string) (*Node, bool) {
	n, ok := e.nodes[id]
	return n, ok
}

// NodeCount returns the number of live shared nodes
func (e *Engine) NodeCount() int {
	return len(e.nodes)
}

// AnchorID returns the pending distance anchor, or "" when none
func (e *Engine) AnchorID() string {
	return e.anchorID
}

// PendingVertices returns the in-progress area ring in model space
func (e *Engine) PendingVertices() []geometry.Vector3 {
	return e.pendingVerts
}

// CancelPending discards the pending anchor and any in-progress polygon
func (e *Engine) CancelPending() {
	e.anchorID = ""
	e.pendingVerts = nil
	e.pendingIndices = nil
}

// resolve turns a screen position into an endpoint candidate, preferring a
// point-level hit and falling back to a freehand world pick.
func (e *Engine) resolve(x, y float64) (resolved, bool) {
	if hit, ok := e.scene.PickPoint(x, y); ok {
		return resolved{local: hit.Local, world: hit.World, pointIndex: hit.Index}, true
	}
	world, ok := e.scene.PickWorldPoint(x, y)
	if !ok {
		return resolved{}, false
	}
	local, ok := e.scene.WorldToModel(world)
	if !ok {
		return resolved{}, false
	}
	return resolved{local: local, world: world, pointIndex: -1}, true
}

// nodeWorld resolves a node's current world position. Nodes bound to a live
// point follow that point through mutations; freehand nodes follow the
// object transform only.
func (e *Engine) nodeWorld(n *Node) (geometry.Vector3, bool) {
	if n.PointIndex >= 0 {
		if world, ok := e.scene.PointWorldPosition(n.PointIndex); ok {
			return world, true
		}
	}
	return e.scene.ModelToWorld(n.Local)
}

// ensureNode returns an existing node bound to the same cloud point, or
// creates a new one for the candidate.
func (e *Engine) ensureNode(r resolved) *Node {
	if r.pointIndex >= 0 {
		for _, n := range e.nodes {
			if n.PointIndex == r.pointIndex {
				return n
			}
		}
	}
	n := &Node{ID: uuid.NewString(), Local: r.local, PointIndex: r.pointIndex}
	e.nodes[n.ID] = n
	return n
}

// snapAgainst applies axis snapping to a candidate relative to an anchor
// world position. A snapped candidate becomes freehand: it no longer
// coincides with the picked point.
func (e *Engine) snapAgainst(anchorWorld geometry.Vector3, r resolved) (resolved, int, bool) {
	snapped, axis := geometry.SnapToAxis(anchorWorld, r.world, e.snapTolerance)
	if axis == geometry.AxisNone {
		return r, axis, true
	}
	if snapped.Distance(r.world) < 1e-12 {
		// Already exactly on axis: keep the point binding.
		return r, axis, true
	}
	local, ok := e.scene.WorldToModel(snapped)
	if !ok {
		return r, geometry.AxisNone, true
	}
	return resolved{local: local, world: snapped, pointIndex: -1}, axis, true
}

// Preview describes the live segment or polygon edge from the current anchor
// to the cursor.
type Preview struct {
	Start  geometry.Vector3 // world
	End    geometry.Vector3 // world
	Axis   int
	Length float64 // scaled
}

// PreviewAt computes the live preview toward the given screen position.
// Returns false when no anchor exists or the cursor resolves to nothing.
func (e *Engine) PreviewAt(x, y float64) (Preview, bool) {
	var anchorWorld geometry.Vector3

	switch e.mode {
	case ModeDistance:
		anchor, ok := e.nodes[e.anchorID]
		if !ok {
			return Preview{}, false
		}
		anchorWorld, ok = e.nodeWorld(anchor)
		if !ok {
			return Preview{}, false
		}
	case ModeArea:
		if len(e.pendingVerts) == 0 {
			return Preview{}, false
		}
		var ok bool
		anchorWorld, ok = e.scene.ModelToWorld(e.pendingVerts[len(e.pendingVerts)-1])
		if !ok {
			return Preview{}, false
		}
	default:
		return Preview{}, false
	}

	r, ok := e.resolve(x, y)
	if !ok {
		return Preview{}, false
	}
	r, axis, _ := e.snapAgainst(anchorWorld, r)

	return Preview{
		Start:  anchorWorld,
		End:    r.world,
		Axis:   axis,
		Length: anchorWorld.Distance(r.world) * e.scale,
	}, true
}

// PlaceDistancePoint handles a primary click in distance mode: the first
// click sets the anchor, each following click commits a segment and the new
// point becomes the next anchor.
func (e *Engine) PlaceDistancePoint(x, y float64) error {
	if e.mode != ModeDistance {
		return nil
	}
	r, ok := e.resolve(x, y)
	if !ok {
		return ErrNoPoint
	}

	anchor, haveAnchor := e.nodes[e.anchorID]
	if !haveAnchor {
		e.anchorID = e.ensureNode(r).ID
		return nil
	}

	anchorWorld, ok := e.nodeWorld(anchor)
	if !ok {
		e.anchorID = e.ensureNode(r).ID
		return nil
	}

	r, axis, _ := e.snapAgainst(anchorWorld, r)
	node := e.ensureNode(r)
	if node.ID == anchor.ID {
		return nil
	}

	if existing := e.findSegment(anchor.ID, node.ID); existing != nil {
		existing.Axis = axis
	} else {
		e.segmentCounter++
		e.segments = append(e.segments, &Segment{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("M%d", e.segmentCounter),
			StartNodeID: anchor.ID,
			EndNodeID:   node.ID,
			Axis:        axis,
		})
	}
	e.anchorID = node.ID
	e.changed()
	return nil
}

// findSegment returns the segment joining two nodes in either order
func (e *Engine) findSegment(a, b string) *Segment {
	for _, s := range e.segments {
		if (s.StartNodeID == a && s.EndNodeID == b) || (s.StartNodeID == b && s.EndNodeID == a) {
			return s
		}
	}
	return nil
}

// AddAreaVertex handles a primary click in area mode, appending a vertex to
// the in-progress ring with axis snap relative to the previous vertex.
func (e *Engine) AddAreaVertex(x, y float64) error {
	if e.mode != ModeArea {
		return nil
	}
	r, ok := e.resolve(x, y)
	if !ok {
		return ErrNoPoint
	}

	if len(e.pendingVerts) > 0 {
		if prevWorld, ok := e.scene.ModelToWorld(e.pendingVerts[len(e.pendingVerts)-1]); ok {
			r, _, _ = e.snapAgainst(prevWorld, r)
		}
	}

	e.pendingVerts = append(e.pendingVerts, r.local)
	e.pendingIndices = append(e.pendingIndices, r.pointIndex)
	return nil
}

// FinishArea closes the in-progress ring into an area polygon.
// Fewer than 3 vertices discards nothing and reports an error.
func (e *Engine) FinishArea() error {
	if len(e.pendingVerts) < 3 {
		return ErrNeedVertices
	}
	e.areaCounter++
	area := &Area{
		ID:                 uuid.NewString(),
		Name:               fmt.Sprintf("A%d", e.areaCounter),
		Vertices:           append([]geometry.Vector3(nil), e.pendingVerts...),
		VertexPointIndices: append([]int(nil), e.pendingIndices...),
	}
	e.areas = append(e.areas, area)
	e.pendingVerts = nil
	e.pendingIndices = nil
	e.changed()
	return nil
}

// DragSegmentEndpoint re-resolves one endpoint of a segment from a screen
// position. The shared node moves, so every segment referencing it follows.
func (e *Engine) DragSegmentEndpoint(segmentID string, end int, x, y float64) error {
	seg := e.segmentByID(segmentID)
	if seg == nil {
		return nil
	}
	movingID, otherID := seg.StartNodeID, seg.EndNodeID
	if end != 0 {
		movingID, otherID = otherID, movingID
	}
	moving, ok := e.nodes[movingID]
	if !ok {
		return nil
	}

	r, resolvedOK := e.resolve(x, y)
	if !resolvedOK {
		return ErrNoPoint
	}

	axis := geometry.AxisNone
	if other, ok := e.nodes[otherID]; ok {
		if otherWorld, ok := e.nodeWorld(other); ok {
			r, axis, _ = e.snapAgainst(otherWorld, r)
		}
	}

	moving.Local = r.local
	moving.PointIndex = r.pointIndex
	seg.Axis = axis
	e.changed()
	return nil
}

// DragAreaVertex moves a single polygon vertex; vertices are independent,
// not node-shared.
func (e *Engine) DragAreaVertex(areaID string, vertex int, x, y float64) error {
	area := e.areaByID(areaID)
	if area == nil || vertex < 0 || vertex >= len(area.Vertices) {
		return nil
	}
	r, ok := e.resolve(x, y)
	if !ok {
		return ErrNoPoint
	}
	area.Vertices[vertex] = r.local
	area.VertexPointIndices[vertex] = r.pointIndex
	e.changed()
	return nil
}

func (e *Engine) segmentByID(id string) *Segment {
	for _, s := range e.segments {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (e *Engine) areaByID(id string) *Area {
	for _, a := range e.areas {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// segmentEndpoints resolves both endpoint world positions of a segment
func (e *Engine) segmentEndpoints(s *Segment) (geometry.Vector3, geometry.Vector3, bool) {
	start, ok := e.nodes[s.StartNodeID]
	if !ok {
		return geometry.Vector3{}, geometry.Vector3{}, false
	}
	end, ok := e.nodes[s.EndNodeID]
	if !ok {
		return geometry.Vector3{}, geometry.Vector3{}, false
	}
	startWorld, ok := e.nodeWorld(start)
	if !ok {
		return geometry.Vector3{}, geometry.Vector3{}, false
	}
	endWorld, ok := e.nodeWorld(end)
	if !ok {
		return geometry.Vector3{}, geometry.Vector3{}, false
	}
	return startWorld, endWorld, true
}

// SegmentLength returns a segment's calibrated world-space length
func (e *Engine) SegmentLength(segmentID string) (float64, bool) {
	s := e.segmentByID(segmentID)
	if s == nil {
		return 0, false
	}
	start, end, ok := e.segmentEndpoints(s)
	if !ok {
		return 0, false
	}
	return start.Distance(end) * e.scale, true
}

// SegmentAxisDeltas returns the signed calibrated world-space delta of a
// segment along each cardinal axis.
func (e *Engine) SegmentAxisDeltas(segmentID string) ([3]float64, bool) {
	s := e.segmentByID(segmentID)
	if s == nil {
		return [3]float64{}, false
	}
	start, end, ok := e.segmentEndpoints(s)
	if !ok {
		return [3]float64{}, false
	}
	deltas := geometry.AxisDeltas(start, end)
	for i := range deltas {
		deltas[i] *= e.scale
	}
	return deltas, true
}

// areaWorldVertices resolves an area ring into world space
func (e *Engine) areaWorldVertices(a *Area) ([]geometry.Vector3, bool) {
	world := make([]geometry.Vector3, len(a.Vertices))
	for i, v := range a.Vertices {
		w, ok := e.scene.ModelToWorld(v)
		if !ok {
			return nil, false
		}
		world[i] = w
	}
	return world, true
}

// AreaValue returns a polygon's calibrated area. The calibration multiplier
// applies to lengths, so areas scale by its square.
func (e *Engine) AreaValue(areaID string) (float64, bool) {
	a := e.areaByID(areaID)
	if a == nil {
		return 0, false
	}
	world, ok := e.areaWorldVertices(a)
	if !ok {
		return 0, false
	}
	return geometry.PolygonArea(world) * e.scale * e.scale, true
}

// AreaPerimeter returns a polygon's calibrated ring-closed perimeter
func (e *Engine) AreaPerimeter(areaID string) (float64, bool) {
	a := e.areaByID(areaID)
	if a == nil {
		return 0, false
	}
	world, ok := e.areaWorldVertices(a)
	if !ok {
		return 0, false
	}
	return geometry.PolygonPerimeter(world) * e.scale, true
}

// ChainTotal returns the summed length of every segment in the given
// segment's connected component. Segments form an undirected graph with
// shared nodes as vertices.
func (e *Engine) ChainTotal(segmentID string) (float64, bool) {
	seed := e.segmentByID(segmentID)
	if seed == nil {
		return 0, false
	}

	// Breadth-first over node ids, collecting member segments.
	visited := map[string]bool{}
	queue := []string{seed.StartNodeID, seed.EndNodeID}
	inComponent := map[string]bool{}
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		if visited[nodeID] {
			continue
		}
		visited[nodeID] = true
		for _, s := range e.segments {
			if s.StartNodeID != nodeID && s.EndNodeID != nodeID {
				continue
			}
			inComponent[s.ID] = true
			queue = append(queue, s.StartNodeID, s.EndNodeID)
		}
	}

	total := 0.0
	for id := range inComponent {
		length, ok := e.SegmentLength(id)
		if !ok {
			continue
		}
		total += length
	}
	return total, true
}

// Rescale derives a new global calibration from a segment of known real
// length. The only way the scale ever changes.
func (e *Engine) Rescale(segmentID string, desired float64) error {
	if desired <= 0 || math.IsNaN(desired) || math.IsInf(desired, 0) {
		return ErrInvalidLength
	}
	current, ok := e.SegmentLength(segmentID)
	if !ok {
		return nil
	}
	if current == 0 {
		return ErrZeroLength
	}
	e.scale *= desired / current
	e.changed()
	return nil
}

// DeleteSegment removes a segment and prunes any node it orphaned
func (e *Engine) DeleteSegment(segmentID string) {
	for i, s := range e.segments {
		if s.ID == segmentID {
			e.segments = append(e.segments[:i], e.segments[i+1:]...)
			e.pruneNodes()
			e.changed()
			return
		}
	}
}

// DeleteArea removes an area polygon
func (e *Engine) DeleteArea(areaID string) {
	for i, a := range e.areas {
		if a.ID == areaID {
			e.areas = append(e.areas[:i], e.areas[i+1:]...)
			e.changed()
			return
		}
	}
}

// ClearAll removes every measurement and resets pending state.
// The calibration scale survives: it belongs to the model, not to any
// single measurement.
func (e *Engine) ClearAll() {
	empty := len(e.segments) == 0 && len(e.areas) == 0 &&
		e.anchorID == "" && len(e.pendingVerts) == 0
	e.segments = nil
	e.areas = nil
	e.nodes = make(map[string]*Node)
	e.CancelPending()
	e.segmentCounter = 0
	e.areaCounter = 0
	if !empty {
		e.changed()
	}
}

// pruneNodes drops nodes no segment references. The pending anchor counts
// as a reference while distance mode is mid-chain.
func (e *Engine) pruneNodes() {
	referenced := map[string]bool{}
	for _, s := range e.segments {
		referenced[s.StartNodeID] = true
		referenced[s.EndNodeID] = true
	}
	if e.anchorID != "" {
		referenced[e.anchorID] = true
	}
	for id := range e.nodes {
		if !referenced[id] {
			delete(e.nodes, id)
		}
	}
}
