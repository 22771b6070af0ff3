package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
)

func unitCubeCloud() *cloud.Cloud {
	c := cloud.NewCloud("cube")
	for _, p := range []geometry.Vector3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
	} {
		c.AddPoint(p)
	}
	return c
}

func TestAnalyzeCloud(t *testing.T) {
	stats := AnalyzeCloud(unitCubeCloud())

	if stats.PointCount != 8 {
		t.Errorf("AnalyzeCloud failed: expected 8 points, got %d", stats.PointCount)
	}
	if stats.Dimensions.X != 1 || stats.Dimensions.Y != 1 || stats.Dimensions.Z != 1 {
		t.Errorf("AnalyzeCloud failed: expected unit dimensions, got %v", stats.Dimensions)
	}
	expected := geometry.NewVector3(0.5, 0.5, 0.5)
	if stats.Centroid.Distance(expected) > 1e-9 {
		t.Errorf("AnalyzeCloud failed: expected centroid %v, got %v", expected, stats.Centroid)
	}
	if math.Abs(stats.Density-8) > 1e-9 {
		t.Errorf("AnalyzeCloud failed: expected density 8, got %v", stats.Density)
	}
}

func TestEstimateSpacing(t *testing.T) {
	spacing := EstimateSpacing(unitCubeCloud())
	if math.Abs(spacing-1) > 1e-9 {
		t.Errorf("EstimateSpacing failed: expected 1, got %v", spacing)
	}

	empty := cloud.NewCloud("empty")
	if EstimateSpacing(empty) != 0 {
		t.Error("EstimateSpacing failed: expected 0 for empty cloud")
	}
}

func TestNearestPoint(t *testing.T) {
	c := unitCubeCloud()

	index, distance := NearestPoint(c, geometry.NewVector3(0.9, 0.9, 0.9))
	if index != 7 {
		t.Errorf("NearestPoint failed: expected index 7, got %d", index)
	}
	if math.Abs(distance-math.Sqrt(0.03)) > 1e-9 {
		t.Errorf("NearestPoint failed: expected distance %v, got %v", math.Sqrt(0.03), distance)
	}

	empty := cloud.NewCloud("empty")
	if index, _ := NearestPoint(empty, geometry.NewVector3(0, 0, 0)); index != -1 {
		t.Errorf("NearestPoint failed: expected -1 for empty cloud, got %d", index)
	}
}

func TestFarthestPoints(t *testing.T) {
	c := unitCubeCloud()
	c.AddPoint(geometry.NewVector3(10, 10, 10))

	far := FarthestPoints(c, 1)
	if len(far) != 1 || far[0] != 8 {
		t.Errorf("FarthestPoints failed: expected [8], got %v", far)
	}

	all := FarthestPoints(c, 100)
	if len(all) != 9 {
		t.Errorf("FarthestPoints failed: expected 9 indices, got %d", len(all))
	}
}
