// Package toon is a cel shaded material: a base color with banded lighting,
// and an alpha mode.
package toon

import (
	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/gekko3d/gekko-npr/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

const FlagPrefix = "TOON_MATERIAL_FLAGS"

const DefaultDeferredLightingPassId uint8 = 1

var DefaultHandle = gekko.HandleOf[Material](gekko.WeakAssetId(1107985723454826663))

type Material struct {
	BaseColor              material.Color
	AlphaMode              material.AlphaMode
	DeferredLightingPassId uint8
}

// Uniform mirrors ToonMaterialUniform in toon_bindings.wgsl.
type Uniform struct {
	BaseColor              mgl32.Vec4 `wgsl:"base_color"`
	Flags                  uint32     `wgsl:"flags"`
	AlphaCutoff            float32    `wgsl:"alpha_cutoff"`
	DeferredLightingPassId uint32     `wgsl:"deferred_lighting_pass_id"`
	_                      uint32
}

func Default() Material {
	return Material{
		BaseColor:              material.White,
		AlphaMode:              material.AlphaOpaque(),
		DeferredLightingPassId: DefaultDeferredLightingPassId,
	}
}

func FromColor(c material.Color) Material {
	m := Default()
	m.BaseColor = c
	if c.Translucent() {
		m.AlphaMode = material.AlphaBlend()
	}
	return m
}

// AsUniform only encodes the alpha mode; toon materials have no feature bits.
func (m Material) AsUniform(formats material.FormatLookup) (Uniform, material.Encoded) {
	desc := material.NewDescription()
	desc.BaseColor = m.BaseColor
	desc.AlphaMode = m.AlphaMode
	enc := material.Encode(desc, nil)

	return Uniform{
		BaseColor:              m.BaseColor.Linear(),
		Flags:                  enc.Flags(),
		AlphaCutoff:            enc.AlphaCutoff,
		DeferredLightingPassId: uint32(m.DeferredLightingPassId),
	}, enc
}

func (m Material) Key() material.PipelineKey {
	return material.PipelineKey{
		UseColor: m.BaseColor != material.White,
		Alpha:    m.AlphaMode.Code(),
		CullMode: gputypes.CullModeBack,
	}
}

func (m Material) Specialize(key material.PipelineKey, desc *material.PipelineDescriptor) {
	desc.ApplyKey(key)
}

// FromGltf keeps the base color factor and alpha mode of a glTF material.
func FromGltf(asset *gekko.GltfAsset, index int) Material {
	g, ok := material.ReadGltfMaterial(asset, index)
	if !ok {
		return Default()
	}
	m := Default()
	m.BaseColor = g.BaseColor
	m.AlphaMode = g.AlphaMode
	return m
}

// Module installs the toon material plugin.
type Module struct {
	ImportGltf bool
}

func (mod Module) Install(app *gekko.App, cmd *gekko.Commands) {
	material.Plugin[Material, Uniform]{
		Name:     "toon",
		Shader:   shaders.ToonShaderId,
		Register: shaders.RegisterToon,
		Contract: material.Contract{
			UniformStruct: "ToonMaterialUniform",
			Uniform:       Uniform{},
			FlagPrefix:    FlagPrefix,
		},
		Default:       Default(),
		DefaultHandle: DefaultHandle,
		ImportGltf:    mod.ImportGltf,
		FromGltf:      FromGltf,
	}.Install(app, cmd)
}
