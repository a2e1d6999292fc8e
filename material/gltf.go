package material

import (
	gekko "github.com/gekko3d/gekko-npr"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// GltfMaterial is the part of a glTF material the material variants import.
// Colors are converted from glTF's linear factors to sRGB.
type GltfMaterial struct {
	Name                     string
	BaseColor                Color
	BaseColorTexture         gekko.Handle[gekko.Image]
	Emissive                 Color
	EmissiveTexture          gekko.Handle[gekko.Image]
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture gekko.Handle[gekko.Image]
	NormalMapTexture         gekko.Handle[gekko.Image]
	OcclusionTexture         gekko.Handle[gekko.Image]
	AlphaMode                AlphaMode
	DoubleSided              bool
}

// ReadGltfMaterial reads material index of asset. ok is false when the index
// does not exist.
func ReadGltfMaterial(asset *gekko.GltfAsset, index int) (res GltfMaterial, ok bool) {
	doc := asset.Document
	if index < 0 || index >= len(doc.Materials) {
		return res, false
	}
	m := doc.Materials[index]

	res = GltfMaterial{
		Name:      m.Name,
		BaseColor: White,
		Emissive:  ColorFromLinear(mgl32.Vec4{float32(m.EmissiveFactor[0]), float32(m.EmissiveFactor[1]), float32(m.EmissiveFactor[2]), 1}),
		Metallic:  1,
		Roughness: 1,
	}

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		res.BaseColor = ColorFromLinear(mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])})
		res.Metallic = float32(pbr.MetallicFactorOrDefault())
		res.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			res.BaseColorTexture = asset.TextureImage(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			res.MetallicRoughnessTexture = asset.TextureImage(pbr.MetallicRoughnessTexture.Index)
		}
	}
	if m.EmissiveTexture != nil {
		res.EmissiveTexture = asset.TextureImage(m.EmissiveTexture.Index)
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		res.NormalMapTexture = asset.TextureImage(*m.NormalTexture.Index)
	}
	if m.OcclusionTexture != nil && m.OcclusionTexture.Index != nil {
		res.OcclusionTexture = asset.TextureImage(*m.OcclusionTexture.Index)
	}

	switch m.AlphaMode {
	case gltf.AlphaMask:
		res.AlphaMode = AlphaMask(float32(m.AlphaCutoffOrDefault()))
	case gltf.AlphaBlend:
		res.AlphaMode = AlphaBlend()
	default:
		res.AlphaMode = AlphaOpaque()
	}
	res.DoubleSided = m.DoubleSided
	return res, true
}
