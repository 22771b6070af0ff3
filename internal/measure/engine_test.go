package measure

import (
	"math"
	"testing"

	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/scene/scenetest"
)

// corner cloud: three points forming an L in the z=0 plane
func cornerScene() *scenetest.Scene {
	return scenetest.New(
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(100, 0, 0),
		geometry.NewVector3(100, 80, 0),
	)
}

func TestDistanceCommitAxisAligned(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	if err := e.PlaceDistancePoint(0, 0); err != nil {
		t.Fatalf("PlaceDistancePoint failed: %v", err)
	}
	if e.AnchorID() == "" {
		t.Fatal("PlaceDistancePoint failed: expected a pending anchor after first click")
	}
	if err := e.PlaceDistancePoint(100, 0); err != nil {
		t.Fatalf("PlaceDistancePoint failed: %v", err)
	}

	segments := e.Segments()
	if len(segments) != 1 {
		t.Fatalf("PlaceDistancePoint failed: expected 1 segment, got %d", len(segments))
	}
	if segments[0].Axis != geometry.AxisX {
		t.Errorf("PlaceDistancePoint failed: expected axis X, got %d", segments[0].Axis)
	}

	length, ok := e.SegmentLength(segments[0].ID)
	if !ok {
		t.Fatal("SegmentLength failed: expected ok")
	}
	if math.Abs(length-100) > 1e-9 {
		t.Errorf("SegmentLength failed: expected 100, got %v", length)
	}
}

func TestDistanceSnapNearAxis(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	// Freehand click slightly off the x axis, within the snap tolerance.
	e.PlaceDistancePoint(200, 5)

	segments := e.Segments()
	if len(segments) != 1 {
		t.Fatalf("PlaceDistancePoint failed: expected 1 segment, got %d", len(segments))
	}
	if segments[0].Axis != geometry.AxisX {
		t.Errorf("snap failed: expected axis X, got %d", segments[0].Axis)
	}

	length, _ := e.SegmentLength(segments[0].ID)
	if math.Abs(length-200) > 1e-9 {
		t.Errorf("snap failed: expected snapped length 200, got %v", length)
	}
}

func TestDistanceNoSnapDiagonal(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(200, 150)

	segments := e.Segments()
	if len(segments) != 1 {
		t.Fatalf("PlaceDistancePoint failed: expected 1 segment, got %d", len(segments))
	}
	if segments[0].Axis != geometry.AxisNone {
		t.Errorf("snap failed: expected no axis for diagonal, got %d", segments[0].Axis)
	}

	length, _ := e.SegmentLength(segments[0].ID)
	expected := math.Sqrt(200*200 + 150*150)
	if math.Abs(length-expected) > 1e-9 {
		t.Errorf("SegmentLength failed: expected %v, got %v", expected, length)
	}
}

func TestDistanceChaining(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(100, 80)

	segments := e.Segments()
	if len(segments) != 2 {
		t.Fatalf("chaining failed: expected 2 segments, got %d", len(segments))
	}
	// The chain shares the middle node rather than duplicating it.
	if segments[0].EndNodeID != segments[1].StartNodeID {
		t.Error("chaining failed: expected consecutive segments to share a node")
	}
	if e.NodeCount() != 3 {
		t.Errorf("chaining failed: expected 3 nodes, got %d", e.NodeCount())
	}

	for _, s := range segments {
		total, ok := e.ChainTotal(s.ID)
		if !ok {
			t.Fatal("ChainTotal failed: expected ok")
		}
		if math.Abs(total-180) > 1e-9 {
			t.Errorf("ChainTotal failed: expected 180 for segment %s, got %v", s.Name, total)
		}
	}
}

func TestChainTotalAfterDelete(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(100, 80)

	first := e.Segments()[0]
	second := e.Segments()[1]

	e.DeleteSegment(first.ID)

	if len(e.Segments()) != 1 {
		t.Fatalf("DeleteSegment failed: expected 1 segment, got %d", len(e.Segments()))
	}
	total, _ := e.ChainTotal(second.ID)
	if math.Abs(total-80) > 1e-9 {
		t.Errorf("ChainTotal failed: expected 80 after delete, got %v", total)
	}
}

func TestDeletePrunesOrphanedNodes(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.CancelPending()

	e.DeleteSegment(e.Segments()[0].ID)

	if e.NodeCount() != 0 {
		t.Errorf("pruneNodes failed: expected 0 nodes after delete, got %d", e.NodeCount())
	}
}

func TestDuplicateSegmentGuard(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.CancelPending()

	// Same two points in reverse order: no duplicate segment.
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(0, 0)

	if len(e.Segments()) != 1 {
		t.Errorf("duplicate guard failed: expected 1 segment, got %d", len(e.Segments()))
	}
	if e.NodeCount() != 2 {
		t.Errorf("duplicate guard failed: expected 2 nodes, got %d", e.NodeCount())
	}
}

func TestZeroLengthClickIgnored(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(0, 0)

	if len(e.Segments()) != 0 {
		t.Errorf("zero-length guard failed: expected 0 segments, got %d", len(e.Segments()))
	}
}

func TestEndpointDragPropagates(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(100, 80)

	first := e.Segments()[0]
	second := e.Segments()[1]

	// Drag the shared middle node (end of first segment) to a new spot.
	if err := e.DragSegmentEndpoint(first.ID, 1, 300, 200); err != nil {
		t.Fatalf("DragSegmentEndpoint failed: %v", err)
	}

	firstLen, _ := e.SegmentLength(first.ID)
	secondLen, _ := e.SegmentLength(second.ID)
	expectedFirst := math.Sqrt(300*300 + 200*200)
	expectedSecond := math.Sqrt(200*200 + 120*120)
	if math.Abs(firstLen-expectedFirst) > 1e-9 {
		t.Errorf("DragSegmentEndpoint failed: expected first length %v, got %v", expectedFirst, firstLen)
	}
	if math.Abs(secondLen-expectedSecond) > 1e-9 {
		t.Errorf("DragSegmentEndpoint failed: expected shared node to move second segment to %v, got %v", expectedSecond, secondLen)
	}
}

func TestEndpointDragResnaps(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(200, 150)
	if e.Segments()[0].Axis != geometry.AxisNone {
		t.Fatal("setup failed: expected diagonal segment without axis")
	}

	// Drag the far endpoint near the x axis: the axis flag comes back.
	e.DragSegmentEndpoint(e.Segments()[0].ID, 1, 200, 4)
	if e.Segments()[0].Axis != geometry.AxisX {
		t.Errorf("re-snap failed: expected axis X after drag, got %d", e.Segments()[0].Axis)
	}
}

func TestSegmentAxisDeltas(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(100, 80)
	e.PlaceDistancePoint(0, 0)

	deltas, ok := e.SegmentAxisDeltas(e.Segments()[0].ID)
	if !ok {
		t.Fatal("SegmentAxisDeltas failed: expected ok")
	}
	if deltas[0] != -100 || deltas[1] != -80 || deltas[2] != 0 {
		t.Errorf("SegmentAxisDeltas failed: expected [-100 -80 0], got %v", deltas)
	}
}

func TestPreviewSnaps(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)

	preview, ok := e.PreviewAt(200, 5)
	if !ok {
		t.Fatal("PreviewAt failed: expected a preview with an active anchor")
	}
	if preview.Axis != geometry.AxisX {
		t.Errorf("PreviewAt failed: expected snapped axis X, got %d", preview.Axis)
	}
	if math.Abs(preview.Length-200) > 1e-9 {
		t.Errorf("PreviewAt failed: expected length 200, got %v", preview.Length)
	}

	if _, ok := NewEngine(sc).PreviewAt(10, 10); ok {
		t.Error("PreviewAt failed: expected no preview without an anchor")
	}
}

func TestAreaTriangle(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeArea)

	e.AddAreaVertex(0, 0)
	e.AddAreaVertex(100, 0)
	e.AddAreaVertex(100, 100)
	if err := e.FinishArea(); err != nil {
		t.Fatalf("FinishArea failed: %v", err)
	}

	areas := e.Areas()
	if len(areas) != 1 {
		t.Fatalf("FinishArea failed: expected 1 area, got %d", len(areas))
	}

	area, ok := e.AreaValue(areas[0].ID)
	if !ok {
		t.Fatal("AreaValue failed: expected ok")
	}
	if math.Abs(area-5000) > 1e-9 {
		t.Errorf("AreaValue failed: expected 5000, got %v", area)
	}

	perimeter, _ := e.AreaPerimeter(areas[0].ID)
	expected := 100 + 100 + math.Sqrt(2)*100
	if math.Abs(perimeter-expected) > 1e-9 {
		t.Errorf("AreaPerimeter failed: expected %v, got %v", expected, perimeter)
	}
}

func TestFinishAreaNeedsThreeVertices(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeArea)

	e.AddAreaVertex(0, 0)
	e.AddAreaVertex(100, 0)

	if err := e.FinishArea(); err != ErrNeedVertices {
		t.Errorf("FinishArea failed: expected ErrNeedVertices, got %v", err)
	}
	if len(e.PendingVertices()) != 2 {
		t.Errorf("FinishArea failed: expected pending ring kept, got %d vertices", len(e.PendingVertices()))
	}

	e.CancelPending()
	if len(e.PendingVertices()) != 0 {
		t.Error("CancelPending failed: expected pending ring discarded")
	}
}

func TestAreaVertexDrag(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeArea)

	e.AddAreaVertex(0, 0)
	e.AddAreaVertex(100, 0)
	e.AddAreaVertex(100, 100)
	e.FinishArea()

	area := e.Areas()[0]
	if err := e.DragAreaVertex(area.ID, 2, 50, 200); err != nil {
		t.Fatalf("DragAreaVertex failed: %v", err)
	}
	moved := area.Vertices[2]
	if moved.X != 50 || moved.Y != 200 {
		t.Errorf("DragAreaVertex failed: expected vertex (50, 200), got %v", moved)
	}
}

func TestRescale(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(100, 80)

	first := e.Segments()[0]
	second := e.Segments()[1]

	// Calibrate: the 100-unit segment is really 2.5 long.
	if err := e.Rescale(first.ID, 2.5); err != nil {
		t.Fatalf("Rescale failed: %v", err)
	}

	firstLen, _ := e.SegmentLength(first.ID)
	if math.Abs(firstLen-2.5) > 1e-9 {
		t.Errorf("Rescale failed: expected calibrated length 2.5, got %v", firstLen)
	}
	secondLen, _ := e.SegmentLength(second.ID)
	if math.Abs(secondLen-2.0) > 1e-9 {
		t.Errorf("Rescale failed: expected other segment scaled to 2.0, got %v", secondLen)
	}
	if math.Abs(e.Scale()-0.025) > 1e-12 {
		t.Errorf("Rescale failed: expected scale 0.025, got %v", e.Scale())
	}
}

func TestRescaleRejectsInvalidLength(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	id := e.Segments()[0].ID

	for _, desired := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if err := e.Rescale(id, desired); err != ErrInvalidLength {
			t.Errorf("Rescale failed: expected ErrInvalidLength for %v, got %v", desired, err)
		}
	}
	if e.Scale() != 1 {
		t.Errorf("Rescale failed: expected scale untouched, got %v", e.Scale())
	}
}

func TestNodeTracksPointMutation(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	id := e.Segments()[0].ID

	// Move the cloud point the second node is bound to.
	sc.MutatePointPositions([]int{1}, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		return geometry.NewVector3(250, 0, 0), true
	})

	length, _ := e.SegmentLength(id)
	if math.Abs(length-250) > 1e-9 {
		t.Errorf("node tracking failed: expected length 250 after point move, got %v", length)
	}
}

func TestModeSwitchDiscardsPending(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)

	e.SetMode(ModeArea)
	e.AddAreaVertex(0, 0)
	e.SetMode(ModeDistance)
	if len(e.PendingVertices()) != 0 {
		t.Error("SetMode failed: expected pending ring discarded on mode switch")
	}

	e.PlaceDistancePoint(0, 0)
	e.SetMode(ModeNone)
	if e.AnchorID() != "" {
		t.Error("SetMode failed: expected pending anchor discarded on mode switch")
	}
}

func TestClearAllIdempotent(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	changes := 0
	e.SetOnChange(func() { changes++ })

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.CancelPending()

	e.ClearAll()
	if len(e.Segments()) != 0 || e.NodeCount() != 0 {
		t.Error("ClearAll failed: expected empty engine")
	}

	before := changes
	e.ClearAll()
	if changes != before {
		t.Error("ClearAll failed: expected second call to be a no-op")
	}
}

func TestOverlayLabels(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	e.PlaceDistancePoint(100, 80)

	overlays := e.SegmentOverlays()
	if len(overlays) != 2 {
		t.Fatalf("SegmentOverlays failed: expected 2 overlays, got %d", len(overlays))
	}
	first := overlays[0]
	if !first.Visible {
		t.Error("SegmentOverlays failed: expected visible overlay")
	}
	if math.Abs(first.LabelX-50) > 1e-9 || math.Abs(first.LabelY-0) > 1e-9 {
		t.Errorf("SegmentOverlays failed: expected label at segment midpoint (50, 0), got (%v, %v)", first.LabelX, first.LabelY)
	}
	if math.Abs(first.ChainSum-180) > 1e-9 {
		t.Errorf("SegmentOverlays failed: expected chain sum 180, got %v", first.ChainSum)
	}
}

func TestHitTestSegmentEndpoint(t *testing.T) {
	sc := cornerScene()
	e := NewEngine(sc)
	e.SetMode(ModeDistance)

	e.PlaceDistancePoint(0, 0)
	e.PlaceDistancePoint(100, 0)
	id := e.Segments()[0].ID

	hitID, end, ok := e.HitTestSegmentEndpoint(98, 3, 8)
	if !ok || hitID != id || end != 1 {
		t.Errorf("HitTestSegmentEndpoint failed: expected (%s, 1), got (%s, %d, %v)", id, hitID, end, ok)
	}

	if _, _, ok := e.HitTestSegmentEndpoint(400, 400, 8); ok {
		t.Error("HitTestSegmentEndpoint failed: expected no hit far away")
	}
}
