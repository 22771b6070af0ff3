package cloud

import (
	"github.com/philipparndt/gosplat/pkg/geometry"
)

// RGB is an 8-bit point color
type RGB struct {
	R, G, B uint8
}

// Cloud represents a point cloud in its own model-space frame.
// Colors is either empty or parallel to Points.
type Cloud struct {
	Name   string
	Points []geometry.Vector3
	Colors []RGB
}

// NewCloud creates an empty point cloud
func NewCloud(name string) *Cloud {
	return &Cloud{
		Name:   name,
		Points: make([]geometry.Vector3, 0),
	}
}

// AddPoint appends a point without color
func (c *Cloud) AddPoint(p geometry.Vector3) {
	c.Points = append(c.Points, p)
}

// Count returns the number of points
func (c *Cloud) Count() int {
	return len(c.Points)
}

// HasColors reports whether per-point colors are present
func (c *Cloud) HasColors() bool {
	return len(c.Colors) == len(c.Points) && len(c.Colors) > 0
}

// BoundingBox calculates the bounding box of the cloud
func (c *Cloud) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, p := range c.Points {
		bbox.Extend(p)
	}
	return bbox
}

// Centroid returns the arithmetic mean of all points
func (c *Cloud) Centroid() geometry.Vector3 {
	if len(c.Points) == 0 {
		return geometry.Vector3{}
	}
	var sum geometry.Vector3
	for _, p := range c.Points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(c.Points)))
}
