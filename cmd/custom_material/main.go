// custom_material shows a textured cube with a tinted custom material lit by
// a point light.
package main

import (
	"flag"
	"fmt"
	"os"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/gekko3d/gekko-npr/material/custom"
	"github.com/gekko3d/gekko-npr/render"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	headless := flag.Bool("headless", false, "run without a window")
	frames := flag.Int("frames", 3, "frames to run when headless")
	texture := flag.String("texture", "textures/cube_color.png", "base color texture")
	assets := flag.String("assets", "assets", "asset root directory")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	app := gekko.NewApp()
	modules := []gekko.Module{
		gekko.LoggingModule{Prefix: "custom_material", Debug: *debug || *headless},
		gekko.TimeModule{},
		gekko.AssetServerModule{Root: *assets},
		gekko.HierarchyModule{},
		custom.Module{},
	}
	if !*headless {
		modules = append(modules, render.Module{Width: 1280, Height: 720, Title: "custom_material"})
	}
	app.UseModules(modules...)

	cmd := app.Commands()
	server, _ := gekko.Resource[gekko.AssetServer](app)
	materials, _ := gekko.Resource[gekko.Assets[custom.Material]](app)

	img, err := server.LoadImage(*texture)
	if err != nil {
		// The handle stays valid; the material samples white until it loads.
		app.Logger().Warnf("%v", err)
	}
	m := custom.FromImage(img)
	m.BaseColor = material.RGB(1.0, 0.5, 0.3)
	h := materials.Add(m)

	cmd.AddEntity(gekko.NewCamera(mgl32.Vec3{-2, 2.5, 5}, mgl32.Vec3{}))
	cmd.AddEntity(gekko.TransformFromXYZ(4, 8, 4), gekko.PointLight(1500, 20, false))
	cmd.AddEntity(
		gekko.NameComponent{Name: "cube"},
		gekko.IdentityTransform(),
		material.MeshMaterial[custom.Material]{Handle: h},
	)

	if *headless {
		app.RunFrames(*frames)
		if pm, ok := mustPrepared(app).Get(h); ok {
			fmt.Fprintf(os.Stdout, "%#08x %s %s\n", pm.Flags, pm.Encoded.Features, pm.Encoded.AlphaMode)
		}
		return
	}
	app.Run()
}

func mustPrepared(app *gekko.App) *material.Prepared[custom.Material] {
	prepared, ok := gekko.Resource[material.Prepared[custom.Material]](app)
	if !ok {
		panic("custom material plugin is not installed")
	}
	return prepared
}
