package custom

import (
	"math"
	"testing"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m := Default()
	assert.Equal(t, material.White, m.BaseColor)
	assert.Equal(t, material.Black, m.Emissive)
	assert.Equal(t, float32(0.5), m.PerceptualRoughness)
	assert.Equal(t, float32(1.5), m.Ior)
	assert.True(t, math.IsInf(float64(m.AttenuationDistance), 1))
	assert.True(t, m.FogEnabled)
	assert.Equal(t, gputypes.CullModeBack, m.CullMode)
	assert.Equal(t, DefaultDeferredLightingPassId, m.DeferredLightingPassId)

	u, enc := m.AsUniform(nil)
	assert.Equal(t, material.NewFeatureSet(material.FogEnabled), enc.Features)
	assert.Equal(t, material.FogEnabled.Mask(), u.Flags)
	assert.Equal(t, material.DefaultAlphaCutoff, u.AlphaCutoff)
	assert.Equal(t, uint32(1), u.DeferredLightingPassId)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, u.BaseColor)
}

func TestFromColor(t *testing.T) {
	assert.Equal(t, material.AlphaModeOpaque, FromColor(material.RGB(1, 0, 0)).AlphaMode.Code())
	assert.Equal(t, material.AlphaModeBlend, FromColor(material.RGBA(1, 0, 0, 0.5)).AlphaMode.Code())

	_, enc := FromColor(material.RGBA(1, 0, 0, 0.5)).AsUniform(nil)
	assert.Equal(t, material.FogEnabled.Mask()|material.AlphaModeBlend.Bits(), enc.Flags())
}

func TestAsUniform_Textures(t *testing.T) {
	tex := gekko.HandleOf[gekko.Image](gekko.WeakAssetId(100))
	normals := gekko.HandleOf[gekko.Image](gekko.WeakAssetId(101))

	m := FromImage(tex)
	m.NormalMapTexture = normals
	m.FlipNormalMapY = true
	m.OcclusionTexture = tex
	m.AttenuationDistance = 3
	m.FogEnabled = false
	m.Unlit = true
	m.AlphaMode = material.AlphaMask(0.7)

	formats := material.FormatLookupFunc(func(id gekko.AssetId) (gputypes.TextureFormat, bool) {
		if id == normals.Id {
			return gputypes.TextureFormatRG8Unorm, true
		}
		return gputypes.TextureFormatRGBA8UnormSrgb, true
	})
	u, enc := m.AsUniform(formats)

	want := material.NewFeatureSet(
		material.BaseColorTexture,
		material.OcclusionTexture,
		material.Unlit,
		material.TwoComponentNormalMap,
		material.FlipNormalMapY,
		material.AttenuationEnabled,
	)
	assert.Equal(t, want, enc.Features)
	assert.Equal(t, want.Bits()|material.AlphaModeMask.Bits(), u.Flags)
	assert.Equal(t, float32(0.7), u.AlphaCutoff)
	assert.Equal(t, float32(3), u.AttenuationDistance)

	assert.Len(t, material.UniformBytes(u), 112)
}

func TestKey(t *testing.T) {
	assert.Equal(t, material.PipelineKey{Alpha: material.AlphaModeOpaque, CullMode: gputypes.CullModeBack}, Default().Key())

	m := FromColor(material.RGBA(0, 0, 1, 0.5))
	m.NormalMapTexture = gekko.HandleOf[gekko.Image](gekko.WeakAssetId(5))
	m.DepthBias = 2
	key := m.Key()
	assert.True(t, key.UseColor)
	assert.True(t, key.NormalMap)
	assert.Equal(t, material.AlphaModeBlend, key.Alpha)
	assert.Equal(t, int32(2), key.DepthBias)

	var desc material.PipelineDescriptor
	m.Specialize(key, &desc)
	assert.Equal(t, []string{material.ShaderDefUseColor, material.ShaderDefNormalMap}, desc.ShaderDefs)
	assert.NotNil(t, desc.Blend)
}

func TestTextureSlots(t *testing.T) {
	slots := material.TextureSlots(Default())
	require.Len(t, slots, 9)

	bindings := map[uint32]bool{}
	for _, s := range slots {
		assert.False(t, bindings[s.Binding], "binding %d reused", s.Binding)
		assert.False(t, bindings[s.SamplerBinding], "binding %d reused", s.SamplerBinding)
		bindings[s.Binding] = true
		bindings[s.SamplerBinding] = true
	}
	for b := uint32(1); b <= 18; b++ {
		assert.True(t, bindings[b], "binding %d", b)
	}
}

func TestFromGltf(t *testing.T) {
	server := gekko.NewAssetServer("")
	h, err := server.LoadGltf("../../testdata/scene.gltf")
	require.NoError(t, err)
	asset, _ := server.Gltf(h.Id)

	m := FromGltf(asset, 0)
	assert.Equal(t, asset.Images[0], m.BaseColorTexture)
	assert.Equal(t, asset.Images[1], m.NormalMapTexture)
	assert.InDelta(t, 0.7, m.PerceptualRoughness, 1e-6)
	assert.Equal(t, material.AlphaModeMask, m.AlphaMode.Code())
	assert.True(t, m.DoubleSided)
	assert.Equal(t, gputypes.CullModeNone, m.CullMode)

	_, enc := m.AsUniform(server)
	assert.True(t, enc.Features.Has(material.BaseColorTexture))
	assert.True(t, enc.Features.Has(material.DoubleSided))
	assert.False(t, enc.Features.Has(material.TwoComponentNormalMap))

	assert.Equal(t, Default(), FromGltf(asset, 3))
}

func TestModule(t *testing.T) {
	app := gekko.NewApp().UseModules(gekko.AssetServerModule{}, Module{})

	materials, ok := gekko.Resource[gekko.Assets[Material]](app)
	require.True(t, ok)
	h := materials.Add(FromColor(material.RGB(0.2, 0.4, 0.6)))
	app.RunFrames(1)

	prepared, ok := gekko.Resource[material.Prepared[Material]](app)
	require.True(t, ok)
	pm, ok := prepared.Get(h)
	require.True(t, ok)
	assert.Equal(t, material.FogEnabled.Mask(), pm.Flags)
	assert.Len(t, pm.Uniform, 112)
	assert.Len(t, pm.Pipeline.BindGroupLayout, 19)

	_, ok = prepared.Get(DefaultHandle)
	assert.True(t, ok)
}
