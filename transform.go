package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world-space transform of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is relative to the entity's Parent.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

type NameComponent struct {
	Name string
}

func IdentityTransform() TransformComponent {
	return TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

func TransformFromXYZ(x, y, z float32) TransformComponent {
	t := IdentityTransform()
	t.Position = mgl32.Vec3{x, y, z}
	return t
}

// LookingAt rotates the transform so that -Z points at target.
func (t TransformComponent) LookingAt(target, up mgl32.Vec3) TransformComponent {
	forward := target.Sub(t.Position)
	if forward.Len() == 0 {
		return t
	}
	t.Rotation = mgl32.QuatLookAtV(t.Position, target, up)
	return t
}

// Forward is the -Z axis rotated into world space.
func (t TransformComponent) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t TransformComponent) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

func (t TransformComponent) Local() LocalTransformComponent {
	return LocalTransformComponent(t)
}

// CameraComponent describes a perspective camera. Fov is in radians.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32
	Aspect   float32
	Near     float32
	Far      float32
}

func NewCamera(position, lookAt mgl32.Vec3) CameraComponent {
	return CameraComponent{
		Position: position,
		LookAt:   lookAt,
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      mgl32.DegToRad(45),
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *CameraComponent) ViewProjection() mgl32.Mat4 {
	view := mgl32.LookAtV(c.Position, c.LookAt, c.Up)
	projection := mgl32.Perspective(c.Fov, c.Aspect, c.Near, c.Far)
	return projection.Mul4(view)
}
