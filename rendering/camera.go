package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/core"
)

// Camera derives a look-at view matrix and a perspective projection.
// Projection depth follows the OpenGL clip convention: the near plane maps
// to -1 and the far plane to +1 in normalized device coordinates.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FovY   float32 // radians
	Aspect float32
	Near   float32
	Far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// NewCamera returns a camera with a 45 degree field of view and square aspect.
func NewCamera(position, target mgl32.Vec3) *Camera {
	c := &Camera{
		Position: position,
		Target:   target,
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     mgl32.DegToRad(45),
		Aspect:   1,
		Near:     0.1,
		Far:      1000,
	}
	c.Update()
	c.UpdateProjectionMatrix()
	return c
}

// Update recomputes the view matrix from Position, Target and Up.
func (c *Camera) Update() {
	c.view = mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// SetAspectRatio stores the viewport aspect. Call UpdateProjectionMatrix
// afterwards; the projection is not recomputed here.
func (c *Camera) SetAspectRatio(aspect float32) {
	c.Aspect = aspect
}

func (c *Camera) UpdateProjectionMatrix() {
	c.projection = mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

func (c *Camera) View() mgl32.Mat4       { return c.view }
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// Forward is the unit vector from Position towards Target.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// maxPitch keeps the orbit away from the poles where LookAt degenerates.
var maxPitch = core.DegreesToRadians(89)

// Orbit rotates the camera around its target by yaw and pitch deltas in
// radians, keeping the distance.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	if offset.Len() == 0 {
		return
	}

	g := core.CartesianToGeographic(toVector3(offset))
	g.Lon -= float64(yaw)
	g.Lat += float64(pitch)
	g = core.NormalizeCoordinates(g, maxPitch)

	p := core.GeographicToCartesian(g)
	c.Position = c.Target.Add(mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)})
}

func toVector3(v mgl32.Vec3) core.Vector3 {
	return core.Vector3{X: float64(v.X()), Y: float64(v.Y()), Z: float64(v.Z())}
}

// Zoom scales the distance to the target; factors below 1 move closer.
// The distance never drops below the near plane.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	offset := c.Position.Sub(c.Target)
	dist := offset.Len() * factor
	if dist < c.Near*2 {
		dist = c.Near * 2
	}
	if offset.Len() == 0 {
		return
	}
	c.Position = c.Target.Add(offset.Normalize().Mul(dist))
}
