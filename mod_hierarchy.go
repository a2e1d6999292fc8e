package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// maxHierarchyPasses bounds propagation depth per frame.
const maxHierarchyPasses = 16

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem mirrors root transforms into their local
// transform and composes child world transforms from their parents.
func TransformHierarchySystem(cmd *Commands) {
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).
		Without(Parent{}).
		Map(func(eid EntityId, local *LocalTransformComponent, tr *TransformComponent) bool {
			*local = tr.Local()
			return true
		})

	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := GetComponent[TransformComponent](cmd, parent.Entity)
			if !ok {
				return true
			}
			next := composeTransform(*parentWorld, *local)
			if next != *world {
				*world = next
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

// composeTransform keeps scale signs so reflections survive propagation.
func composeTransform(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	scaled := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaled)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
