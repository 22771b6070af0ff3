package viewer

import (
	"math"

	"github.com/philipparndt/gosplat/pkg/geometry"
)

// Camera is an orbiting perspective camera around a target point.
type Camera struct {
	Position geometry.Vector3
	Target   geometry.Vector3
	Up       geometry.Vector3
	FOV      float64 // Field of view in radians
	Distance float64
	AngleX   float64 // Rotation around X axis (vertical)
	AngleY   float64 // Rotation around Y axis (horizontal)

	defaultTarget   geometry.Vector3
	defaultDistance float64
	defaultAngleX   float64
	defaultAngleY   float64
}

// NewCamera creates a camera positioned to view a bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	center := bbox.Center()
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0
	if distance <= 0 {
		distance = 10.0
	}

	c := &Camera{
		Target:   center,
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      math.Pi / 4, // 45 degrees
		Distance: distance,
		AngleX:   0.3,
		AngleY:   0.3,

		defaultTarget:   center,
		defaultDistance: distance,
		defaultAngleX:   0.3,
		defaultAngleY:   0.3,
	}
	c.UpdatePosition()
	return c
}

// UpdatePosition derives the camera position from the orbit angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.AngleX) * math.Sin(c.AngleY)
	y := c.Distance * math.Sin(c.AngleX)
	z := c.Distance * math.Cos(c.AngleX) * math.Cos(c.AngleY)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera by the given angle deltas
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.AngleX += deltaX
	c.AngleY += deltaY

	// Clamp vertical rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	if c.AngleX > maxAngle {
		c.AngleX = maxAngle
	}
	if c.AngleX < -maxAngle {
		c.AngleX = -maxAngle
	}

	c.UpdatePosition()
}

// Zoom changes the camera distance
func (c *Camera) Zoom(delta float64) {
	c.Distance *= (1.0 + delta)
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

// Pan moves the camera target in the view plane by a pixel delta
func (c *Camera) Pan(deltaX, deltaY float64) {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	// Pan speed scales with distance so the motion tracks the cursor
	panSpeed := c.Distance * 0.001

	c.Target = c.Target.Add(right.Mul(-deltaX * panSpeed))
	c.Target = c.Target.Add(up.Mul(deltaY * panSpeed))
	c.UpdatePosition()
}

// Reset restores the default view
func (c *Camera) Reset() {
	c.Target = c.defaultTarget
	c.Distance = c.defaultDistance
	c.AngleX = c.defaultAngleX
	c.AngleY = c.defaultAngleY
	c.UpdatePosition()
}

// SetTopView looks straight down
func (c *Camera) SetTopView() {
	c.AngleX = math.Pi/2 - 0.11
	c.AngleY = 0
	c.UpdatePosition()
}

// SetFrontView looks along the -Z axis
func (c *Camera) SetFrontView() {
	c.AngleX = 0
	c.AngleY = 0
	c.UpdatePosition()
}

// SetSideView looks along the -X axis
func (c *Camera) SetSideView() {
	c.AngleX = 0
	c.AngleY = math.Pi / 2
	c.UpdatePosition()
}

// Project projects a 3D world point to screen coordinates.
// It returns pixel coordinates and the depth along the view direction.
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	depth := z
	if z <= 0.01 {
		z = 0.01 // Prevent division by zero
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, depth
}

// Unproject converts screen coordinates to a world-space ray
func (c *Camera) Unproject(screenX, screenY, width, height float64) (origin, direction geometry.Vector3) {
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	rayDir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	return c.Position, rayDir.Normalize()
}
