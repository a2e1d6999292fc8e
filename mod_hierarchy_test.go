package gekko

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d: want %v, got %v", i, want, got)
	}
}

func TestTransformHierarchy_Propagates(t *testing.T) {
	app := NewApp().UseModules(HierarchyModule{})
	cmd := app.Commands()

	root := TransformFromXYZ(10, 0, 0)
	parent := cmd.AddEntity(root, root.Local())

	childLocal := TransformFromXYZ(0, 5, 0)
	child := cmd.AddEntity(Parent{Entity: parent}, childLocal.Local(), TransformComponent{})

	grandLocal := TransformFromXYZ(0, 0, 2)
	grandchild := cmd.AddEntity(Parent{Entity: child}, grandLocal.Local(), TransformComponent{})

	app.Step()

	c, ok := GetComponent[TransformComponent](cmd, child)
	require.True(t, ok)
	vecNear(t, mgl32.Vec3{10, 5, 0}, c.Position)

	g, ok := GetComponent[TransformComponent](cmd, grandchild)
	require.True(t, ok)
	vecNear(t, mgl32.Vec3{10, 5, 2}, g.Position)
}

func TestTransformHierarchy_FollowsMovingRoot(t *testing.T) {
	app := NewApp().UseModules(HierarchyModule{})
	cmd := app.Commands()

	root := IdentityTransform()
	parent := cmd.AddEntity(root, root.Local())
	childLocal := TransformFromXYZ(1, 0, 0)
	child := cmd.AddEntity(Parent{Entity: parent}, childLocal.Local(), TransformComponent{})
	app.Step()

	p, ok := GetComponent[TransformComponent](cmd, parent)
	require.True(t, ok)
	p.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	p.Scale = mgl32.Vec3{2, 2, 2}
	app.Step()

	c, ok := GetComponent[TransformComponent](cmd, child)
	require.True(t, ok)
	vecNear(t, mgl32.Vec3{0, 0, -2}, c.Position)
	vecNear(t, mgl32.Vec3{2, 2, 2}, c.Scale)
}

func TestComposeTransform_KeepsNegativeScale(t *testing.T) {
	parent := IdentityTransform()
	parent.Scale = mgl32.Vec3{-1, 1, 1}
	local := TransformFromXYZ(1, 0, 0).Local()

	got := composeTransform(parent, local)
	vecNear(t, mgl32.Vec3{-1, 0, 0}, got.Position)
	vecNear(t, mgl32.Vec3{-1, 1, 1}, got.Scale)
}
