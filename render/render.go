// Package render draws prepared materials with wgpu into a GLFW window.
//
// It owns no material logic: every installed material plugin publishes its
// prepared materials to material.Registry, and the render module mirrors
// them as pipelines, uniform buffers and bind groups.
package render

import (
	"github.com/cogentcore/webgpu/wgpu"
	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const rendererName = "material-forward"

type Module struct {
	Width  int
	Height int
	Title  string
	// ClearColor defaults to the fog color.
	ClearColor *material.Color
	Fog        *material.Fog
}

type frameSettings struct {
	clear material.Color
}

func (m Module) Install(app *gekko.App, cmd *gekko.Commands) {
	gekko.EnsureSingleRenderer(app, cmd, rendererName)

	if m.Width <= 0 {
		m.Width = 1280
	}
	if m.Height <= 0 {
		m.Height = 720
	}
	if m.Title == "" {
		m.Title = "Gekko"
	}

	fog, ok := gekko.Resource[material.Fog](app)
	if !ok {
		fog = m.Fog
		if fog == nil {
			fog = material.DefaultFog()
		}
		cmd.AddResources(fog)
	}
	settings := &frameSettings{clear: fog.Color}
	if m.ClearColor != nil {
		settings.clear = *m.ClearColor
	}

	if _, ok := gekko.Resource[material.Registry](app); !ok {
		cmd.AddResources(&material.Registry{})
	}
	if _, ok := gekko.Resource[gekko.AssetServer](app); !ok {
		cmd.AddResources(gekko.NewAssetServer(""))
	}

	window, ok := gekko.Resource[WindowState](app)
	if !ok {
		var err error
		window, err = createWindowState(m.Width, m.Height, m.Title)
		if err != nil {
			panic(err)
		}
		cmd.AddResources(window)
	}
	gpu, err := createGpuState(window)
	if err != nil {
		panic(err)
	}
	cache, err := newMaterialCache(gpu)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(gpu, cache, settings)

	cmd.UseSystem(gekko.System(renderFrame).InStage(gekko.Render).RunAlways())
	cmd.UseSystem(gekko.System(pollWindow).InStage(gekko.PostRender).RunAlways())

	app.Logger().Infof("renderer %s: %dx%d %v", rendererName, window.WindowWidth, window.WindowHeight, gpu.surfaceConfig.Format)
}

func renderFrame(cmd *gekko.Commands, server *gekko.AssetServer, registry *material.Registry, fog *material.Fog,
	window *WindowState, gpu *GpuState, cache *materialCache, settings *frameSettings) {
	if gpu.device == nil {
		return
	}
	if w, h, changed := window.FramebufferSize(); changed {
		gpu.resize(w, h)
	}

	cache.syncAll(cmd.Logger(), server, registry)
	if view, ok := material.ExtractView(cmd, fog); ok {
		cache.writeView(view)
	}

	surfaceTexture, err := gpu.surface.GetCurrentTexture()
	if err != nil {
		cmd.Logger().Warnf("acquire surface texture: %v", err)
		return
	}
	defer surfaceTexture.Release()

	nextView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer nextView.Release()

	encoder, err := gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	c := settings.clear.Linear()
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       nextView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
		}},
	})
	defer pass.Release()

	pass.SetBindGroup(material.ViewGroup, cache.viewGroup, nil)
	pass.SetBindGroup(material.MeshGroup, cache.meshGroup, nil)
	if err := pass.End(); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpu.queue.Submit(cmdBuffer)
	gpu.surface.Present()
}

// pollWindow runs after the frame was presented, so a closing window can
// release the device here.
func pollWindow(cmd *gekko.Commands, window *WindowState, gpu *GpuState, cache *materialCache) {
	glfw.PollEvents()
	if !window.ShouldClose() || gpu.device == nil {
		return
	}
	cache.release()
	gpu.release()
	window.destroy()
	cmd.Exit()
}
