package gekko

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS component for lights. Directional lights shine
// along the -Z axis of the entity's TransformComponent.
type LightComponent struct {
	Type           LightType
	Color          [3]float32 // linear RGB
	Intensity      float32    // lux for directional, lumens for point/spot
	Range          float32    // point/spot
	ConeAngle      float32    // full cone angle in degrees (spot)
	ShadowsEnabled bool
}

func DirectionalLight(shadows bool) LightComponent {
	return LightComponent{
		Type:           LightTypeDirectional,
		Color:          [3]float32{1, 1, 1},
		Intensity:      100000,
		ShadowsEnabled: shadows,
	}
}

func PointLight(intensity, lightRange float32, shadows bool) LightComponent {
	return LightComponent{
		Type:           LightTypePoint,
		Color:          [3]float32{1, 1, 1},
		Intensity:      intensity,
		Range:          lightRange,
		ShadowsEnabled: shadows,
	}
}

// DirectionalLightShadowMap is the resolution of directional shadow maps.
type DirectionalLightShadowMap struct {
	Size uint32
}

func DefaultDirectionalLightShadowMap() *DirectionalLightShadowMap {
	return &DirectionalLightShadowMap{Size: 2048}
}

// LightOrbit rotates a directional light around the Y axis over time:
// rotation = euler(ZYX: 0, elapsed*Speed, Tilt).
type LightOrbit struct {
	Speed float32 // radians per second
	Tilt  float32 // radians around X
}

func DefaultLightOrbit() LightOrbit {
	return LightOrbit{Speed: math.Pi / 5, Tilt: -math.Pi / 4}
}

func (o LightOrbit) RotationAt(elapsedSeconds float32) mgl32.Quat {
	return mgl32.AnglesToQuat(0, elapsedSeconds*o.Speed, o.Tilt, mgl32.ZYX)
}

// LightOrbitSystem updates every orbiting light from the elapsed time.
func LightOrbitSystem(cmd *Commands, t *Time) {
	elapsed := t.ElapsedSeconds()
	MakeQuery3[LightComponent, LightOrbit, TransformComponent](cmd).Map(func(eid EntityId, light *LightComponent, orbit *LightOrbit, tr *TransformComponent) bool {
		if light.Type == LightTypeDirectional {
			tr.Rotation = orbit.RotationAt(elapsed)
		}
		return true
	})
}

// LightModule animates orbiting lights and provides the shadow map size.
type LightModule struct {
	ShadowMapSize uint32
}

func (m LightModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[DirectionalLightShadowMap](app); !ok {
		shadowMap := DefaultDirectionalLightShadowMap()
		if m.ShadowMapSize > 0 {
			shadowMap.Size = m.ShadowMapSize
		}
		cmd.AddResources(shadowMap)
	}
	cmd.UseSystem(System(LightOrbitSystem).InStage(Update).RunAlways())
}
