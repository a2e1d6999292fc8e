package material

import (
	gekko "github.com/gekko3d/gekko-npr"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewUniform is bound at group 0 by every material shader.
type ViewUniform struct {
	ViewProj       mgl32.Mat4 `wgsl:"view_proj"`
	WorldPosition  mgl32.Vec4 `wgsl:"world_position"`
	LightDirection mgl32.Vec4 `wgsl:"light_direction"`
	LightColor     mgl32.Vec4 `wgsl:"light_color"`
	FogColor       mgl32.Vec4 `wgsl:"fog_color"` // alpha is the fog density
}

type MeshUniform struct {
	Model mgl32.Mat4 `wgsl:"model"`
}

// Fog configures distance fog for materials with fog enabled.
type Fog struct {
	Color   Color
	Density float32
}

func DefaultFog() *Fog {
	return &Fog{Color: RGB(0.5, 0.5, 0.6), Density: 0.02}
}

// NewViewUniform builds the view data from the camera and the first
// directional light. Light color is premultiplied by a normalized intensity.
func NewViewUniform(cam *gekko.CameraComponent, light *gekko.LightComponent, lightTransform *gekko.TransformComponent, fog *Fog) ViewUniform {
	u := ViewUniform{
		ViewProj:       cam.ViewProjection(),
		WorldPosition:  cam.Position.Vec4(1),
		LightDirection: mgl32.Vec4{0, -1, 0, 0},
	}
	if light != nil {
		scale := light.Intensity
		if light.Type == gekko.LightTypeDirectional {
			scale = light.Intensity / 100000
		}
		u.LightColor = mgl32.Vec4{light.Color[0] * scale, light.Color[1] * scale, light.Color[2] * scale, 1}
	}
	if lightTransform != nil {
		u.LightDirection = lightTransform.Forward().Vec4(0)
	}
	if fog != nil {
		c := fog.Color.Linear()
		u.FogColor = mgl32.Vec4{c[0], c[1], c[2], fog.Density}
	}
	return u
}

// ExtractView finds the first camera and directional light in the world.
func ExtractView(cmd *gekko.Commands, fog *Fog) (ViewUniform, bool) {
	var cam *gekko.CameraComponent
	gekko.MakeQuery1[gekko.CameraComponent](cmd).Map(func(eid gekko.EntityId, c *gekko.CameraComponent) bool {
		cam = c
		return false
	})
	if cam == nil {
		return ViewUniform{}, false
	}

	var light *gekko.LightComponent
	var lightTransform *gekko.TransformComponent
	gekko.MakeQuery2[gekko.LightComponent, gekko.TransformComponent](cmd).Map(func(eid gekko.EntityId, l *gekko.LightComponent, tr *gekko.TransformComponent) bool {
		if l.Type != gekko.LightTypeDirectional {
			return true
		}
		light, lightTransform = l, tr
		return false
	})
	return NewViewUniform(cam, light, lightTransform, fog), true
}
