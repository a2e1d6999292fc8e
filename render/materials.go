package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the layout every material shader reads at locations 0..2.
type Vertex struct {
	Position mgl32.Vec3 `gekko:"layout" location:"0" format:"float3"`
	Normal   mgl32.Vec3 `gekko:"layout" location:"1" format:"float3"`
	Uv       mgl32.Vec2 `gekko:"layout" location:"2" format:"float2"`
}

type pipelineKey struct {
	source string
	key    material.PipelineKey
}

type samplerKey struct {
	filter string
	mode   string
}

type gpuTexture struct {
	view    *wgpu.TextureView
	version uint
	loaded  bool
}

type gpuMaterial struct {
	version   uint64
	pipeline  *wgpu.RenderPipeline
	layout    *wgpu.BindGroupLayout
	uniform   *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	// image versions the bind group was built with
	images map[gekko.AssetId]uint
}

// materialCache mirrors the prepared materials of every plugin on the GPU.
type materialCache struct {
	gpu *GpuState

	viewLayout *wgpu.BindGroupLayout
	meshLayout *wgpu.BindGroupLayout
	viewBuffer *wgpu.Buffer
	meshBuffer *wgpu.Buffer
	viewGroup  *wgpu.BindGroup
	meshGroup  *wgpu.BindGroup

	white     *wgpu.TextureView
	textures  map[gekko.AssetId]*gpuTexture
	samplers  map[samplerKey]*wgpu.Sampler
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	materials map[string]*gpuMaterial
}

func uniformLayout(device *wgpu.Device, label string, size uint64) (*wgpu.BindGroupLayout, error) {
	return device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		}},
	})
}

func uniformGroup(gpu *GpuState, label string, layout *wgpu.BindGroupLayout, contents []byte) (*wgpu.Buffer, *wgpu.BindGroup, error) {
	buf, err := gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, err
	}
	group, err := gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return nil, nil, err
	}
	return buf, group, nil
}

func newMaterialCache(gpu *GpuState) (*materialCache, error) {
	c := &materialCache{
		gpu:       gpu,
		textures:  make(map[gekko.AssetId]*gpuTexture),
		samplers:  make(map[samplerKey]*wgpu.Sampler),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
		materials: make(map[string]*gpuMaterial),
	}

	viewBytes := material.UniformBytes(material.ViewUniform{})
	meshBytes := material.UniformBytes(material.MeshUniform{Model: mgl32.Ident4()})

	var err error
	if c.viewLayout, err = uniformLayout(gpu.device, "ViewBGL", uint64(len(viewBytes))); err != nil {
		return nil, err
	}
	if c.meshLayout, err = uniformLayout(gpu.device, "MeshBGL", uint64(len(meshBytes))); err != nil {
		return nil, err
	}
	if c.viewBuffer, c.viewGroup, err = uniformGroup(gpu, "View", c.viewLayout, viewBytes); err != nil {
		return nil, err
	}
	if c.meshBuffer, c.meshGroup, err = uniformGroup(gpu, "Mesh", c.meshLayout, meshBytes); err != nil {
		return nil, err
	}
	if c.white, err = c.uploadTexture(&gekko.Image{
		Texels: []uint8{255, 255, 255, 255},
		Width:  1,
		Height: 1,
		Format: 0,
	}); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *materialCache) writeView(u material.ViewUniform) {
	if err := c.gpu.queue.WriteBuffer(c.viewBuffer, 0, material.UniformBytes(u)); err != nil {
		panic(err)
	}
}

// uploadTexture creates a sampled texture from img. The zero format is
// uploaded as RGBA8Unorm.
func (c *materialCache) uploadTexture(img *gekko.Image) (*wgpu.TextureView, error) {
	format, bpp := wgpu.TextureFormatRGBA8Unorm, uint32(4)
	if img.Format != 0 {
		format, bpp = wgpuTextureFormat(img.Format)
	}
	extent := wgpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1}

	texture, err := c.gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer texture.Release()

	view, err := texture.CreateView(nil)
	if err != nil {
		return nil, err
	}
	err = c.gpu.queue.WriteTexture(
		texture.AsImageCopy(),
		img.Texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  img.Width * bpp,
			RowsPerImage: img.Height,
		},
		&extent,
	)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// textureView returns the view of h, uploading it when it loaded or changed
// since the last call. Missing or unloaded images use a white texel.
func (c *materialCache) textureView(server *gekko.AssetServer, h gekko.Handle[gekko.Image]) (*wgpu.TextureView, uint, error) {
	if h.IsNil() {
		return c.white, 0, nil
	}
	img, ok := server.Image(h)
	if !ok || !img.Loaded {
		return c.white, 0, nil
	}

	cached, ok := c.textures[h.Id]
	if ok && cached.loaded && cached.version == img.Version {
		return cached.view, cached.version, nil
	}
	view, err := c.uploadTexture(img)
	if err != nil {
		return nil, 0, fmt.Errorf("upload %s: %w", img.Path, err)
	}
	if ok {
		cached.view.Release()
	}
	c.textures[h.Id] = &gpuTexture{view: view, version: img.Version, loaded: true}
	return view, img.Version, nil
}

func (c *materialCache) sampler(filter, mode string) (*wgpu.Sampler, error) {
	key := samplerKey{filter: filter, mode: mode}
	if s, ok := c.samplers[key]; ok {
		return s, nil
	}
	f := wgpuFilterMode(filter)
	m := wgpuWrapMode(mode)
	s, err := c.gpu.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  m,
		AddressModeV:  m,
		AddressModeW:  m,
		MagFilter:     f,
		MinFilter:     f,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	c.samplers[key] = s
	return s, nil
}

func (c *materialCache) pipeline(server *gekko.AssetServer, source string, pm *material.PreparedMaterial, layout *wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{source: source, key: pm.Key}
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}

	desc := pm.Pipeline
	shader, ok := server.Shader(desc.Shader)
	if !ok {
		return nil, fmt.Errorf("shader %s is not registered", desc.Shader)
	}
	module, err := c.gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: shader.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shader.Specialize(desc.ShaderDefs),
		},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	pipelineLayout, err := c.gpu.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{c.viewLayout, c.meshLayout, layout},
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	p, err := c.gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout(Vertex{})},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    c.gpu.surfaceConfig.Format,
				Blend:     wgpuBlendState(desc.Blend),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpuFrontFace(desc.FrontFace),
			CullMode:  wgpuCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	return p, nil
}

func (c *materialCache) bindGroup(server *gekko.AssetServer, gm *gpuMaterial, pm *material.PreparedMaterial) (*wgpu.BindGroup, map[gekko.AssetId]uint, error) {
	entries := []wgpu.BindGroupEntry{{
		Binding: material.UniformBinding,
		Buffer:  gm.uniform,
		Size:    wgpu.WholeSize,
	}}
	images := make(map[gekko.AssetId]uint, len(pm.Textures))
	for _, slot := range pm.Textures {
		view, version, err := c.textureView(server, slot.Texture)
		if err != nil {
			return nil, nil, err
		}
		if !slot.Texture.IsNil() {
			images[slot.Texture.Id] = version
		}
		sampler, err := c.sampler(slot.Filter, slot.WrapMode)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: slot.Binding, TextureView: view, Size: wgpu.WholeSize},
			wgpu.BindGroupEntry{Binding: slot.SamplerBinding, Sampler: sampler, Size: wgpu.WholeSize},
		)
	}

	group, err := c.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  gm.layout,
		Entries: entries,
	})
	return group, images, err
}

// imagesChanged reports whether any texture of pm has a different upload
// state than when the bind group was built.
func (c *materialCache) imagesChanged(server *gekko.AssetServer, gm *gpuMaterial, pm *material.PreparedMaterial) bool {
	for _, slot := range pm.Textures {
		if slot.Texture.IsNil() {
			continue
		}
		img, ok := server.Image(slot.Texture)
		loaded := ok && img.Loaded
		built, had := gm.images[slot.Texture.Id]
		switch {
		case loaded && (!had || built != img.Version):
			return true
		case !loaded && had && built != 0:
			return true
		}
	}
	return false
}

// sync brings the GPU side of one prepared material up to date.
func (c *materialCache) sync(server *gekko.AssetServer, source string, id gekko.AssetId, pm *material.PreparedMaterial) error {
	name := source + "/" + string(id)
	gm, ok := c.materials[name]
	if ok && gm.version == pm.Version && !c.imagesChanged(server, gm, pm) {
		return nil
	}

	if !ok {
		layout, err := c.gpu.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   source + " material",
			Entries: wgpuLayoutEntries(pm.Pipeline.BindGroupLayout),
		})
		if err != nil {
			return err
		}
		uniform, err := c.gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    name,
			Contents: pm.Uniform,
			Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		gm = &gpuMaterial{layout: layout, uniform: uniform}
		c.materials[name] = gm
	} else if gm.version != pm.Version {
		if err := c.gpu.queue.WriteBuffer(gm.uniform, 0, pm.Uniform); err != nil {
			return err
		}
	}

	pipeline, err := c.pipeline(server, source, pm, gm.layout)
	if err != nil {
		return err
	}
	group, images, err := c.bindGroup(server, gm, pm)
	if err != nil {
		return err
	}
	if gm.bindGroup != nil {
		gm.bindGroup.Release()
	}
	gm.pipeline = pipeline
	gm.bindGroup = group
	gm.images = images
	gm.version = pm.Version
	return nil
}

// syncAll walks every registered material source. Entries whose prepared
// material disappeared are released.
func (c *materialCache) syncAll(log gekko.Logger, server *gekko.AssetServer, registry *material.Registry) {
	live := make(map[string]struct{}, len(c.materials))
	for _, src := range registry.Sources() {
		src.EachPrepared(func(id gekko.AssetId, pm *material.PreparedMaterial) bool {
			live[src.Name()+"/"+string(id)] = struct{}{}
			if err := c.sync(server, src.Name(), id, pm); err != nil {
				log.Errorf("%s material %s: %v", src.Name(), id, err)
			}
			return true
		})
	}
	for name, gm := range c.materials {
		if _, ok := live[name]; ok {
			continue
		}
		if gm.bindGroup != nil {
			gm.bindGroup.Release()
		}
		gm.uniform.Release()
		gm.layout.Release()
		delete(c.materials, name)
	}
}

func (c *materialCache) release() {
	for name, gm := range c.materials {
		if gm.bindGroup != nil {
			gm.bindGroup.Release()
		}
		gm.uniform.Release()
		gm.layout.Release()
		delete(c.materials, name)
	}
	for key, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, key)
	}
	for key, s := range c.samplers {
		s.Release()
		delete(c.samplers, key)
	}
	for id, t := range c.textures {
		t.view.Release()
		delete(c.textures, id)
	}
	c.white.Release()
	c.viewGroup.Release()
	c.meshGroup.Release()
	c.viewBuffer.Release()
	c.meshBuffer.Release()
	c.viewLayout.Release()
	c.meshLayout.Release()
}
