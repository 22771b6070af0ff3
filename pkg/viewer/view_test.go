package viewer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
)

func testCloud() *cloud.Cloud {
	c := cloud.NewCloud("test")
	c.AddPoint(geometry.NewVector3(0, 0, 0))
	c.AddPoint(geometry.NewVector3(10, 0, 0))
	c.AddPoint(geometry.NewVector3(0, 10, 0))
	c.AddPoint(geometry.NewVector3(10, 10, 0))
	c.AddPoint(geometry.NewVector3(5, 5, 5))
	return c
}

func TestProjectTargetCenters(t *testing.T) {
	v := NewView(testCloud())
	v.SetSize(800, 600)

	proj, ok := v.ProjectWorldToScreen(v.Camera().Target)
	if !ok {
		t.Fatal("ProjectWorldToScreen failed: expected ok for camera target")
	}
	if math.Abs(proj.X-400) > 1 || math.Abs(proj.Y-300) > 1 {
		t.Errorf("Project failed: expected camera target near (400, 300), got (%v, %v)", proj.X, proj.Y)
	}
	if proj.Depth <= 0 {
		t.Errorf("Project failed: expected positive depth for target, got %v", proj.Depth)
	}
}

func TestUnprojectProjectRoundTrip(t *testing.T) {
	v := NewView(testCloud())
	v.SetSize(800, 600)

	origin, dir := v.Camera().Unproject(250, 180, 800, 600)
	point := origin.Add(dir.Mul(v.Camera().Distance))

	x, y, _ := v.Camera().Project(point, 800, 600)
	if math.Abs(x-250) > 1 || math.Abs(y-180) > 1 {
		t.Errorf("Unproject round trip failed: expected (250, 180), got (%v, %v)", x, y)
	}
}

func TestWorldModelRoundTrip(t *testing.T) {
	v := NewView(testCloud())
	v.SetTransform(mgl64.Translate3D(3, -2, 7).Mul4(mgl64.Scale3D(2, 2, 2)))

	local := geometry.NewVector3(1, 2, 3)
	world, ok := v.ModelToWorld(local)
	if !ok {
		t.Fatal("ModelToWorld failed: expected ok")
	}
	expected := geometry.NewVector3(5, 2, 13)
	if world.Distance(expected) > 1e-9 {
		t.Errorf("ModelToWorld failed: expected %v, got %v", expected, world)
	}

	back, ok := v.WorldToModel(world)
	if !ok {
		t.Fatal("WorldToModel failed: expected ok")
	}
	if back.Distance(local) > 1e-9 {
		t.Errorf("WorldToModel round trip failed: expected %v, got %v", local, back)
	}
}

func TestWorldToModelSingularTransform(t *testing.T) {
	v := NewView(testCloud())
	v.SetTransform(mgl64.Scale3D(1, 1, 0))

	if _, ok := v.WorldToModel(geometry.NewVector3(1, 2, 3)); ok {
		t.Error("WorldToModel failed: expected not ok for singular transform")
	}
}

func TestPickPointAtProjection(t *testing.T) {
	v := NewView(testCloud())
	v.SetSize(800, 600)

	world, _ := v.PointWorldPosition(1)
	proj, _ := v.ProjectWorldToScreen(world)
	if !proj.Visible {
		t.Fatal("ProjectWorldToScreen failed: expected point 1 visible in default framing")
	}

	hit, ok := v.PickPoint(proj.X, proj.Y)
	if !ok {
		t.Fatal("PickPoint failed: expected a hit at the projected position")
	}
	if hit.Index != 1 {
		t.Errorf("PickPoint failed: expected index 1, got %d", hit.Index)
	}
	if hit.Local.Distance(geometry.NewVector3(10, 0, 0)) > 1e-9 {
		t.Errorf("PickPoint failed: expected local (10, 0, 0), got %v", hit.Local)
	}
}

func TestPickPointSkipsHidden(t *testing.T) {
	v := NewView(testCloud())
	v.SetSize(800, 600)

	world, _ := v.PointWorldPosition(1)
	proj, _ := v.ProjectWorldToScreen(world)

	v.SetPointsHidden([]int{1}, true)
	if hit, ok := v.PickPoint(proj.X, proj.Y); ok && hit.Index == 1 {
		t.Error("PickPoint failed: expected hidden point 1 to be unpickable")
	}

	v.SetPointsHidden([]int{1}, false)
	hit, ok := v.PickPoint(proj.X, proj.Y)
	if !ok || hit.Index != 1 {
		t.Errorf("PickPoint failed: expected point 1 pickable after restore, got ok=%v index=%d", ok, hit.Index)
	}
}

func TestPickPointMissesOutsideRadius(t *testing.T) {
	v := NewView(testCloud())
	v.SetSize(800, 600)
	v.SetPickRadius(2)

	world, _ := v.PointWorldPosition(1)
	proj, _ := v.ProjectWorldToScreen(world)

	if _, ok := v.PickPoint(proj.X+50, proj.Y+50); ok {
		t.Error("PickPoint failed: expected no hit far from every point")
	}
}

func TestMutatePointPositionsAllOrNothing(t *testing.T) {
	v := NewView(testCloud())
	before := v.Cloud().Points[0]

	ok := v.MutatePointPositions([]int{0, 1}, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		if index == 1 {
			return geometry.Vector3{}, false
		}
		return local.Add(geometry.NewVector3(1, 0, 0)), true
	})
	if ok {
		t.Error("MutatePointPositions failed: expected false when a mutation is rejected")
	}
	if v.Cloud().Points[0] != before {
		t.Errorf("MutatePointPositions failed: expected point 0 unchanged, got %v", v.Cloud().Points[0])
	}
}

func TestMutatePointPositionsRejectsNonFinite(t *testing.T) {
	v := NewView(testCloud())

	ok := v.MutatePointPositions([]int{0}, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		return geometry.NewVector3(math.NaN(), 0, 0), true
	})
	if ok {
		t.Error("MutatePointPositions failed: expected false for non-finite position")
	}
}

func TestMutatePointPositionsApplies(t *testing.T) {
	v := NewView(testCloud())

	ok := v.MutatePointPositions([]int{0, 1}, func(local geometry.Vector3, index int) (geometry.Vector3, bool) {
		return local.Add(geometry.NewVector3(0, 0, 1)), true
	})
	if !ok {
		t.Fatal("MutatePointPositions failed: expected success")
	}
	if v.Cloud().Points[0].Z != 1 || v.Cloud().Points[1].Z != 1 {
		t.Errorf("MutatePointPositions failed: expected z=1 for points 0 and 1, got %v and %v",
			v.Cloud().Points[0].Z, v.Cloud().Points[1].Z)
	}
}

func TestHiddenBookkeeping(t *testing.T) {
	v := NewView(testCloud())

	v.SetPointsHidden([]int{3, 1, -5, 999}, true)
	hidden := v.Hidden()
	if len(hidden) != 2 || hidden[0] != 1 || hidden[1] != 3 {
		t.Errorf("Hidden failed: expected [1 3], got %v", hidden)
	}

	count := 0
	v.ForEachVisiblePoint(func(index int, local, world geometry.Vector3) {
		count++
	})
	if count != 3 {
		t.Errorf("ForEachVisiblePoint failed: expected 3 visible points, got %d", count)
	}

	v.ClearHiddenPoints()
	if len(v.Hidden()) != 0 {
		t.Errorf("ClearHiddenPoints failed: expected no hidden points, got %v", v.Hidden())
	}
}
