package gekko

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Camera *CameraDef
	Lights []LightDef
	Models []ModelDef
}

type CameraDef struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
}

// LightDef defines a light instantiation. Directional lights point along the
// -Z axis of Rotation; a non-nil Orbit animates that rotation.
type LightDef struct {
	Light    LightComponent
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Orbit    *LightOrbit
}

// ModelDef spawns a glTF scene under a root entity. Ref may name a scene
// with a "#SceneN" suffix. Components are added to the root.
type ModelDef struct {
	Ref        string
	Transform  TransformComponent
	Components []any
}

// LoadScene spawns every entity of scene. Models that fail to load are
// skipped and reported together; image failures leave the model spawned.
func LoadScene(cmd *Commands, assets *AssetServer, scene *SceneDef) error {
	if scene.Camera != nil {
		cmd.AddEntity(NewCamera(scene.Camera.Position, scene.Camera.LookAt))
	}

	for _, light := range scene.Lights {
		spawnLight(cmd, light)
	}

	var errs []error
	for _, model := range scene.Models {
		if err := spawnModel(cmd, assets, model); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func spawnLight(cmd *Commands, def LightDef) EntityId {
	rot := def.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	comps := []any{
		TransformComponent{Position: def.Position, Rotation: rot, Scale: mgl32.Vec3{1, 1, 1}},
		def.Light,
	}
	if def.Orbit != nil {
		comps = append(comps, *def.Orbit)
	}
	return cmd.AddEntity(comps...)
}

func spawnModel(cmd *Commands, assets *AssetServer, def ModelDef) error {
	h, err := assets.LoadGltf(def.Ref)
	asset, ok := assets.Gltf(h.Id)
	if !ok {
		return err
	}

	tr := def.Transform
	if tr.Scale == (mgl32.Vec3{}) {
		tr.Scale = mgl32.Vec3{1, 1, 1}
	}
	if tr.Rotation == (mgl32.Quat{}) {
		tr.Rotation = mgl32.QuatIdent()
	}
	comps := append([]any{NameComponent{Name: asset.Path}, tr, tr.Local()}, def.Components...)
	root := cmd.AddEntity(comps...)

	if roots := SpawnGltfScene(cmd, asset, &root); len(roots) == 0 {
		return errors.Join(err, fmt.Errorf("%s has no scene to spawn", def.Ref))
	}
	return err
}
