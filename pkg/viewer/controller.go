package viewer

// Controller translates pointer drags and scroll wheel into camera motion.
// Sensitivities follow the interactive viewer defaults.
type Controller struct {
	view *View

	RotateSpeed float64
	ZoomSpeed   float64
}

func NewController(view *View) *Controller {
	return &Controller{
		view:        view,
		RotateSpeed: 0.01,
		ZoomSpeed:   0.1,
	}
}

// Orbit rotates the camera from a horizontal/vertical pixel drag
func (c *Controller) Orbit(dx, dy float64) {
	c.view.Camera().Rotate(dx*c.RotateSpeed, dy*c.RotateSpeed)
}

// Pan moves the camera target from a pixel drag
func (c *Controller) Pan(dx, dy float64) {
	c.view.Camera().Pan(dx, dy)
}

// Zoom dollies the camera; positive steps zoom in
func (c *Controller) Zoom(steps float64) {
	c.view.Camera().Zoom(-steps * c.ZoomSpeed * c.view.Camera().Distance)
}

// Reset restores the default framing of the cloud
func (c *Controller) Reset() {
	c.view.Camera().Reset()
}
