package material

import (
	"bytes"
	"fmt"
	"slices"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gogpu/gputypes"
)

// Material is implemented by material value types. AsUniform also returns
// the encoding so the plugin can report flag changes.
type Material[U any] interface {
	AsUniform(formats FormatLookup) (U, Encoded)
	Key() PipelineKey
	Specialize(key PipelineKey, desc *PipelineDescriptor)
}

// MeshMaterial attaches a material to an entity.
type MeshMaterial[M any] struct {
	Handle gekko.Handle[M]
}

// Plugin installs a material type: it registers the shaders, checks the
// uniform contract, stores a default material and prepares every material
// of the type once per frame in PreRender.
type Plugin[M Material[U], U any] struct {
	Name          string
	Shader        gekko.AssetId
	Register      func(server *gekko.AssetServer) error
	Contract      Contract
	Default       M
	DefaultHandle gekko.Handle[M]

	// ImportGltf gives glTF primitives spawned without a material one
	// converted by FromGltf. A negative index asks for the default material.
	ImportGltf bool
	FromGltf   func(asset *gekko.GltfAsset, material int) M
}

type gltfMaterialKey struct {
	asset    gekko.AssetId
	material int
}

type gltfMaterials[M any] struct {
	handles map[gltfMaterialKey]gekko.Handle[M]
}

func (p Plugin[M, U]) Install(app *gekko.App, cmd *gekko.Commands) {
	log := app.Logger()

	if _, installed := gekko.Resource[gekko.Assets[M]](app); installed {
		log.Warnf("%s material plugin is already installed", p.Name)
		return
	}

	server, ok := gekko.Resource[gekko.AssetServer](app)
	if !ok {
		server = gekko.NewAssetServer("")
		cmd.AddResources(server)
	}

	if err := p.Register(server); err != nil {
		log.Errorf("%s material: %v", p.Name, err)
		panic(err)
	}
	shader, ok := server.Shader(p.Shader)
	if !ok {
		panic(fmt.Sprintf("%s material: shader %s is not registered", p.Name, p.Shader))
	}
	if err := CheckContract(shader, p.Contract); err != nil {
		log.Errorf("%s material does not match %s: %v", p.Name, shader.Name, err)
		panic(err)
	}
	log.Infof("%s material registered with shader %s", p.Name, shader.Name)

	materials := gekko.NewAssets[M]()
	materials.Insert(p.DefaultHandle, p.Default)

	registry, ok := gekko.Resource[Registry](app)
	if !ok {
		registry = &Registry{}
		cmd.AddResources(registry)
	}
	prepared := NewPrepared[M](p.Name)
	registry.Add(prepared)

	cmd.AddResources(materials, prepared)
	cmd.UseSystem(gekko.System(p.prepare).InStage(gekko.PreRender).RunAlways())

	if p.ImportGltf && p.FromGltf != nil {
		cmd.AddResources(&gltfMaterials[M]{handles: make(map[gltfMaterialKey]gekko.Handle[M])})
		cmd.UseSystem(gekko.System(p.importGltf).InStage(gekko.PostUpdate).RunAlways())
	}
}

func (p Plugin[M, U]) descriptor() PipelineDescriptor {
	var zero U
	return PipelineDescriptor{
		Label:              p.Name,
		Shader:             p.Shader,
		VertexEntryPoint:   "vertex",
		FragmentEntryPoint: "fragment",
		UniformSize:        uint64(len(UniformBytes(zero))),
		FrontFace:          gputypes.FrontFaceCCW,
	}
}

// Prepare re-encodes materials every frame so that textures which finish
// loading later switch their format-dependent bits on.
func (p Plugin[M, U]) prepare(cmd *gekko.Commands, server *gekko.AssetServer, materials *gekko.Assets[M], prepared *Prepared[M]) {
	log := cmd.Logger()
	seen := make(map[gekko.AssetId]struct{}, materials.Len())

	materials.Each(func(h gekko.Handle[M], m *M) bool {
		seen[h.Id] = struct{}{}

		uniform, encoded := (*m).AsUniform(server)
		raw := UniformBytes(uniform)
		key := (*m).Key()
		slots := TextureSlots(*m)

		prev, ok := prepared.Get(h)
		if ok && prev.Flags == encoded.Flags() && prev.Key == key &&
			bytes.Equal(prev.Uniform, raw) && slices.Equal(prev.Textures, slots) {
			return true
		}

		desc := p.descriptor()
		desc.BindGroupLayout = BindGroupLayout(desc.UniformSize, slots)
		(*m).Specialize(key, &desc)

		pm := &PreparedMaterial{
			Encoded:  encoded,
			Flags:    encoded.Flags(),
			Uniform:  raw,
			Key:      key,
			Pipeline: desc,
			Textures: slots,
			Version:  1,
		}
		if ok {
			pm.Version = prev.Version + 1
			if prev.Flags != pm.Flags {
				log.Debugf("%s material %s flags %s/%s -> %s/%s", p.Name, h.Id,
					prev.Encoded.Features, prev.Encoded.AlphaMode, encoded.Features, encoded.AlphaMode)
			}
		} else {
			log.Debugf("%s material %s prepared with flags %#08x (%s/%s)", p.Name, h.Id,
				pm.Flags, encoded.Features, encoded.AlphaMode)
		}
		prepared.put(h.Id, pm)
		return true
	})

	prepared.retain(seen)
}

func (p Plugin[M, U]) importGltf(cmd *gekko.Commands, server *gekko.AssetServer, materials *gekko.Assets[M], cache *gltfMaterials[M]) {
	gekko.MakeQuery1[gekko.GltfPrimitive](cmd).Without(MeshMaterial[M]{}).Map(func(eid gekko.EntityId, prim *gekko.GltfPrimitive) bool {
		h := p.DefaultHandle
		if prim.Material >= 0 {
			key := gltfMaterialKey{asset: prim.Asset, material: prim.Material}
			cached, ok := cache.handles[key]
			if !ok {
				asset, found := server.Gltf(prim.Asset)
				if !found {
					return true
				}
				cached = materials.Add(p.FromGltf(asset, prim.Material))
				cache.handles[key] = cached
			}
			h = cached
		}
		cmd.AddComponents(eid, MeshMaterial[M]{Handle: h})
		return true
	})
}
