// Package custom is a physically based material with optional textures for
// every input, encoded into the CustomMaterialUniform flag word.
package custom

import (
	"math"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/gekko3d/gekko-npr/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

const FlagPrefix = "CUSTOM_MATERIAL_FLAGS"

// DefaultDeferredLightingPassId is the lighting pass of the standard
// deferred renderer.
const DefaultDeferredLightingPassId uint8 = 1

// DefaultHandle is where the plugin stores Default().
var DefaultHandle = gekko.HandleOf[Material](gekko.WeakAssetId(1107985723454826662))

type ParallaxMappingMethod uint8

const (
	ParallaxOcclusion ParallaxMappingMethod = iota
	ParallaxRelief
)

type OpaqueRendererMethod uint8

const (
	OpaqueAuto OpaqueRendererMethod = iota
	OpaqueForward
	OpaqueDeferred
)

type Material struct {
	BaseColor        material.Color
	BaseColorTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"1" sampler:"2"`

	Emissive        material.Color
	EmissiveTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"3" sampler:"4"`

	PerceptualRoughness      float32
	Metallic                 float32
	MetallicRoughnessTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"5" sampler:"6"`

	Reflectance float32

	DiffuseTransmission        float32
	DiffuseTransmissionTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"17" sampler:"18"`

	SpecularTransmission        float32
	SpecularTransmissionTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"13" sampler:"14"`

	Thickness        float32
	ThicknessTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"15" sampler:"16"`

	Ior                 float32
	AttenuationDistance float32
	AttenuationColor    material.Color

	NormalMapTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"9" sampler:"10"`
	FlipNormalMapY   bool

	OcclusionTexture gekko.Handle[gekko.Image] `gekko:"texture" binding:"7" sampler:"8"`

	DoubleSided bool
	CullMode    gputypes.CullMode
	Unlit       bool
	FogEnabled  bool
	AlphaMode   material.AlphaMode
	DepthBias   float32

	DepthMap              gekko.Handle[gekko.Image] `gekko:"texture" binding:"11" sampler:"12"`
	ParallaxDepthScale    float32
	ParallaxMappingMethod ParallaxMappingMethod
	MaxParallaxLayerCount float32

	OpaqueRenderMethod     OpaqueRendererMethod
	DeferredLightingPassId uint8
}

// Uniform mirrors CustomMaterialUniform in custom_shader.wgsl.
type Uniform struct {
	BaseColor                   mgl32.Vec4 `wgsl:"base_color"`
	Emissive                    mgl32.Vec4 `wgsl:"emissive"`
	Roughness                   float32    `wgsl:"roughness"`
	Metallic                    float32    `wgsl:"metallic"`
	Reflectance                 float32    `wgsl:"reflectance"`
	DiffuseTransmission         float32    `wgsl:"diffuse_transmission"`
	SpecularTransmission        float32    `wgsl:"specular_transmission"`
	Thickness                   float32    `wgsl:"thickness"`
	Ior                         float32    `wgsl:"ior"`
	AttenuationDistance         float32    `wgsl:"attenuation_distance"`
	AttenuationColor            mgl32.Vec4 `wgsl:"attenuation_color"`
	Flags                       uint32     `wgsl:"flags"`
	AlphaCutoff                 float32    `wgsl:"alpha_cutoff"`
	ParallaxDepthScale          float32    `wgsl:"parallax_depth_scale"`
	MaxParallaxLayerCount       float32    `wgsl:"max_parallax_layer_count"`
	MaxReliefMappingSearchSteps uint32     `wgsl:"max_relief_mapping_search_steps"`
	DeferredLightingPassId      uint32     `wgsl:"deferred_lighting_pass_id"`
	_                           [2]uint32
}

func Default() Material {
	return Material{
		// White so that a base color texture is shown unchanged.
		BaseColor:              material.White,
		Emissive:               material.Black,
		PerceptualRoughness:    0.5,
		Metallic:               0,
		Reflectance:            0.5,
		Ior:                    1.5,
		AttenuationDistance:    float32(math.Inf(1)),
		AttenuationColor:       material.White,
		CullMode:               gputypes.CullModeBack,
		FogEnabled:             true,
		AlphaMode:              material.AlphaOpaque(),
		ParallaxDepthScale:     0.1,
		ParallaxMappingMethod:  ParallaxOcclusion,
		MaxParallaxLayerCount:  16,
		OpaqueRenderMethod:     OpaqueAuto,
		DeferredLightingPassId: DefaultDeferredLightingPassId,
	}
}

// FromColor returns a material of color c, blended when c is translucent.
func FromColor(c material.Color) Material {
	m := Default()
	m.BaseColor = c
	if c.Translucent() {
		m.AlphaMode = material.AlphaBlend()
	}
	return m
}

func FromImage(texture gekko.Handle[gekko.Image]) Material {
	m := Default()
	m.BaseColorTexture = texture
	return m
}

func (m Material) Description() material.Description {
	return material.Description{
		BaseColor:                   m.BaseColor,
		Emissive:                    m.Emissive,
		AlphaMode:                   m.AlphaMode,
		BaseColorTexture:            m.BaseColorTexture.Id,
		EmissiveTexture:             m.EmissiveTexture.Id,
		MetallicRoughnessTexture:    m.MetallicRoughnessTexture.Id,
		OcclusionTexture:            m.OcclusionTexture.Id,
		NormalMapTexture:            m.NormalMapTexture.Id,
		DepthMap:                    m.DepthMap.Id,
		SpecularTransmissionTexture: m.SpecularTransmissionTexture.Id,
		ThicknessTexture:            m.ThicknessTexture.Id,
		DiffuseTransmissionTexture:  m.DiffuseTransmissionTexture.Id,
		DoubleSided:                 m.DoubleSided,
		Unlit:                       m.Unlit,
		FogEnabled:                  m.FogEnabled,
		FlipNormalMapY:              m.FlipNormalMapY,
		AttenuationDistance:         m.AttenuationDistance,
	}
}

func (m Material) AsUniform(formats material.FormatLookup) (Uniform, material.Encoded) {
	enc := material.Encode(m.Description(), formats)
	return Uniform{
		BaseColor:              m.BaseColor.Linear(),
		Emissive:               m.Emissive.Linear(),
		Roughness:              m.PerceptualRoughness,
		Metallic:               m.Metallic,
		Reflectance:            m.Reflectance,
		DiffuseTransmission:    m.DiffuseTransmission,
		SpecularTransmission:   m.SpecularTransmission,
		Thickness:              m.Thickness,
		Ior:                    m.Ior,
		AttenuationDistance:    m.AttenuationDistance,
		AttenuationColor:       m.AttenuationColor.Linear(),
		Flags:                  enc.Flags(),
		AlphaCutoff:            enc.AlphaCutoff,
		ParallaxDepthScale:     m.ParallaxDepthScale,
		MaxParallaxLayerCount:  m.MaxParallaxLayerCount,
		DeferredLightingPassId: uint32(m.DeferredLightingPassId),
	}, enc
}

func (m Material) Key() material.PipelineKey {
	return material.PipelineKey{
		UseColor:  m.BaseColor != material.White,
		NormalMap: !m.NormalMapTexture.IsNil(),
		Alpha:     m.AlphaMode.Code(),
		CullMode:  m.CullMode,
		DepthBias: int32(m.DepthBias),
	}
}

func (m Material) Specialize(key material.PipelineKey, desc *material.PipelineDescriptor) {
	desc.ApplyKey(key)
}

// FromGltf converts material index of a glTF document. Missing indices give
// Default().
func FromGltf(asset *gekko.GltfAsset, index int) Material {
	g, ok := material.ReadGltfMaterial(asset, index)
	if !ok {
		return Default()
	}

	m := Default()
	m.BaseColor = g.BaseColor
	m.BaseColorTexture = g.BaseColorTexture
	m.Emissive = g.Emissive
	m.EmissiveTexture = g.EmissiveTexture
	m.Metallic = g.Metallic
	m.PerceptualRoughness = g.Roughness
	m.MetallicRoughnessTexture = g.MetallicRoughnessTexture
	m.NormalMapTexture = g.NormalMapTexture
	m.OcclusionTexture = g.OcclusionTexture
	m.AlphaMode = g.AlphaMode
	m.DoubleSided = g.DoubleSided
	if g.DoubleSided {
		m.CullMode = gputypes.CullModeNone
	}
	return m
}

// Module installs the custom material plugin.
type Module struct {
	ImportGltf bool
}

func (mod Module) Install(app *gekko.App, cmd *gekko.Commands) {
	material.Plugin[Material, Uniform]{
		Name:     "custom",
		Shader:   shaders.CustomShaderId,
		Register: shaders.RegisterCustom,
		Contract: material.Contract{
			UniformStruct: "CustomMaterialUniform",
			Uniform:       Uniform{},
			FlagPrefix:    FlagPrefix,
			Features:      material.AllFeatures(),
		},
		Default:       Default(),
		DefaultHandle: DefaultHandle,
		ImportGltf:    mod.ImportGltf,
		FromGltf:      FromGltf,
	}.Install(app, cmd)
}
