package analysis

import (
	"math"
	"sort"

	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
)

// Statistics contains various measurements of a point cloud
type Statistics struct {
	PointCount  int
	HasColors   bool
	BoundingBox geometry.BoundingBox
	Dimensions  geometry.Vector3
	Centroid    geometry.Vector3
	Density     float64
}

// sampleLimit caps how many points the spacing estimate inspects.
// Dense captures run into the millions and an exact pass is quadratic.
const sampleLimit = 2000

// AnalyzeCloud performs comprehensive analysis on a point cloud
func AnalyzeCloud(c *cloud.Cloud) *Statistics {
	stats := &Statistics{
		PointCount:  c.Count(),
		HasColors:   c.HasColors(),
		BoundingBox: c.BoundingBox(),
		Centroid:    c.Centroid(),
	}
	stats.Dimensions = stats.BoundingBox.Size()

	volume := stats.Dimensions.X * stats.Dimensions.Y * stats.Dimensions.Z
	if volume > 0 {
		stats.Density = float64(stats.PointCount) / volume
	}

	return stats
}

// EstimateSpacing returns the average nearest-neighbor distance over a sample
// of the cloud. Zero for clouds with fewer than two points.
func EstimateSpacing(c *cloud.Cloud) float64 {
	n := c.Count()
	if n < 2 {
		return 0
	}

	step := 1
	if n > sampleLimit {
		step = n / sampleLimit
	}

	total := 0.0
	samples := 0
	for i := 0; i < n; i += step {
		nearest := math.MaxFloat64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := c.Points[i].Distance(c.Points[j])
			if d < nearest {
				nearest = d
			}
		}
		total += nearest
		samples++
	}

	return total / float64(samples)
}

// NearestPoint finds the point in the cloud nearest to a given position.
// Returns the index and distance, or -1 for an empty cloud.
func NearestPoint(c *cloud.Cloud, position geometry.Vector3) (int, float64) {
	best := -1
	minDistance := math.MaxFloat64

	for i, p := range c.Points {
		d := position.Distance(p)
		if d < minDistance {
			minDistance = d
			best = i
		}
	}

	if best < 0 {
		return -1, 0
	}
	return best, minDistance
}

// FarthestPoints returns the indices of the N points farthest from the centroid
func FarthestPoints(c *cloud.Cloud, count int) []int {
	centroid := c.Centroid()

	indices := make([]int, c.Count())
	for i := range indices {
		indices[i] = i
	}

	sort.Slice(indices, func(i, j int) bool {
		return c.Points[indices[i]].Distance(centroid) > c.Points[indices[j]].Distance(centroid)
	})

	if count > len(indices) {
		count = len(indices)
	}
	return indices[:count]
}
