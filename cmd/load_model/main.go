// load_model shows a glTF scene with toon materials under a rotating
// directional light.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/gekko3d/gekko-npr/material/toon"
	"github.com/gekko3d/gekko-npr/render"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	headless := flag.Bool("headless", false, "run without a window")
	frames := flag.Int("frames", 3, "frames to run when headless")
	model := flag.String("model", "models/tuzi.glb", "glTF scene to load, optionally suffixed with #SceneN")
	assets := flag.String("assets", "assets", "asset root directory")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	app := gekko.NewApp()
	modules := []gekko.Module{
		gekko.LoggingModule{Prefix: "load_model", Debug: *debug || *headless},
		gekko.TimeModule{FixedStep: fixedStep(*headless)},
		gekko.AssetServerModule{Root: *assets},
		gekko.HierarchyModule{},
		gekko.LightModule{ShadowMapSize: 4096},
		toon.Module{ImportGltf: true},
	}
	if !*headless {
		modules = append(modules, render.Module{Width: 1280, Height: 720, Title: "load_model"})
	}
	app.UseModules(modules...)

	cmd := app.Commands()
	server, _ := gekko.Resource[gekko.AssetServer](app)
	materials, _ := gekko.Resource[gekko.Assets[toon.Material]](app)
	if err := setup(cmd, server, materials, *model); err != nil {
		app.Logger().Warnf("%v", err)
	}

	if *headless {
		app.RunFrames(*frames)
		report(app)
		return
	}
	app.Run()
}

func fixedStep(headless bool) time.Duration {
	if headless {
		return time.Second / 60
	}
	return 0
}

func setup(cmd *gekko.Commands, server *gekko.AssetServer, materials *gekko.Assets[toon.Material], model string) error {
	orbit := gekko.DefaultLightOrbit()
	err := gekko.LoadScene(cmd, server, &gekko.SceneDef{
		Camera: &gekko.CameraDef{Position: mgl32.Vec3{3, 4, 2}},
		Lights: []gekko.LightDef{{
			Light: gekko.DirectionalLight(true),
			Orbit: &orbit,
		}},
		Models: []gekko.ModelDef{{Ref: model}},
	})

	silver := materials.Add(toon.FromColor(material.Silver))
	plane := gekko.IdentityTransform()
	plane.Scale = mgl32.Vec3{5, 1, 5}
	parent := cmd.AddEntity(
		gekko.NameComponent{Name: "plane"},
		plane,
		material.MeshMaterial[toon.Material]{Handle: silver},
	)
	capsule := gekko.TransformFromXYZ(0, 1, 0)
	cmd.AddEntity(
		gekko.NameComponent{Name: "capsule"},
		capsule,
		capsule.Local(),
		gekko.Parent{Entity: parent},
		material.MeshMaterial[toon.Material]{Handle: silver},
	)
	return err
}

func report(app *gekko.App) {
	prepared, ok := gekko.Resource[material.Prepared[toon.Material]](app)
	if !ok {
		return
	}
	prepared.EachPrepared(func(id gekko.AssetId, pm *material.PreparedMaterial) bool {
		fmt.Fprintf(os.Stdout, "%s %#08x %s %s\n", id, pm.Flags, pm.Encoded.Features, pm.Encoded.AlphaMode)
		return true
	})
}
