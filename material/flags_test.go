package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
)

func TestFeatureBit_Positions(t *testing.T) {
	assert.Equal(t, 14, FeatureBitCount)
	assert.Equal(t, uint32(0x3fff), FeatureMask)
	assert.Equal(t, uint32(1), BaseColorTexture.Mask())
	assert.Equal(t, uint32(1<<5), Unlit.Mask())
	assert.Equal(t, uint32(1<<13), AttenuationEnabled.Mask())
	assert.Equal(t, uint32(0), FeatureBit(14).Mask())
	assert.Equal(t, "UNKNOWN", FeatureBit(20).String())
	assert.Equal(t, "CUSTOM_MATERIAL_FLAGS_FLIP_NORMAL_MAP_Y_BIT", FlipNormalMapY.ShaderConst("CUSTOM_MATERIAL_FLAGS"))
}

func TestFeatureBits_DoNotOverlapAlphaField(t *testing.T) {
	var seen uint32
	for _, b := range AllFeatures() {
		assert.Zero(t, seen&b.Mask(), "%s overlaps another bit", b)
		assert.Zero(t, AlphaModeReservedBits&b.Mask(), "%s overlaps the alpha field", b)
		seen |= b.Mask()
	}
	assert.Equal(t, FeatureMask, seen)
}

func TestFeatureSet(t *testing.T) {
	s := NewFeatureSet(Unlit, DoubleSided, Unlit)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(Unlit))
	assert.False(t, s.Has(FogEnabled))
	assert.Equal(t, []FeatureBit{DoubleSided, Unlit}, s.Slice())
	assert.Equal(t, "DOUBLE_SIDED|UNLIT", s.String())

	s = s.Without(Unlit).Set(FogEnabled, true).Set(DoubleSided, false)
	assert.Equal(t, NewFeatureSet(FogEnabled), s)
	assert.Equal(t, "NONE", FeatureSet(0).String())

	assert.Equal(t, uint32(0), FeatureSet(AlphaModeReservedBits).Bits())
}

func TestPackUnpack(t *testing.T) {
	for _, code := range AllAlphaModes() {
		for _, b := range AllFeatures() {
			flags := Pack(NewFeatureSet(b), code)
			d := Unpack(flags)
			assert.Equal(t, NewFeatureSet(b), d.Features)
			assert.Equal(t, code, d.AlphaMode)
		}
	}

	all := NewFeatureSet(AllFeatures()...)
	d := Unpack(Pack(all, AlphaModeMultiply))
	assert.Equal(t, all, d.Features)
	assert.Equal(t, AlphaModeMultiply, d.AlphaMode)
}

func TestAlphaModeCode(t *testing.T) {
	assert.Equal(t, uint32(29), AlphaModeShiftBits)
	assert.Equal(t, uint32(3758096384), AlphaModeReservedBits)

	want := map[AlphaModeCode]uint32{
		AlphaModeOpaque:        0,
		AlphaModeMask:          536870912,
		AlphaModeBlend:         1073741824,
		AlphaModePremultiplied: 1610612736,
		AlphaModeAdd:           2147483648,
		AlphaModeMultiply:      2684354560,
	}
	for code, bits := range want {
		assert.Equal(t, bits, code.Bits(), code.String())
		assert.True(t, code.Valid())
	}

	assert.False(t, AlphaModeCode(6).Valid())
	assert.Equal(t, "RESERVED(7)", AlphaModeCode(7).String())
	assert.Equal(t, "TOON_MATERIAL_FLAGS_ALPHA_MODE_PREMULTIPLIED", AlphaModePremultiplied.ShaderConst("TOON_MATERIAL_FLAGS"))
}

func TestAlphaMode_Cutoff(t *testing.T) {
	assert.Equal(t, float32(0.25), AlphaMask(0.25).Cutoff())
	assert.Equal(t, float32(0), AlphaMask(0).Cutoff())
	assert.Equal(t, DefaultAlphaCutoff, AlphaBlend().Cutoff())
	assert.Equal(t, "MASK(0.25)", AlphaMask(0.25).String())
	assert.Equal(t, "ADD", AlphaAdd().String())
}

func TestAlphaModeCode_BlendState(t *testing.T) {
	assert.Nil(t, AlphaModeOpaque.BlendState())
	assert.Nil(t, AlphaModeMask.BlendState())

	blend := AlphaModeBlend.BlendState()
	if assert.NotNil(t, blend) {
		assert.Equal(t, gputypes.BlendFactorSrcAlpha, blend.Color.SrcFactor)
		assert.Equal(t, gputypes.BlendFactorOneMinusSrcAlpha, blend.Color.DstFactor)
	}

	premultiplied := AlphaModePremultiplied.BlendState()
	if assert.NotNil(t, premultiplied) {
		assert.Equal(t, gputypes.BlendFactorOne, premultiplied.Color.SrcFactor)
	}

	add := AlphaModeAdd.BlendState()
	if assert.NotNil(t, add) {
		assert.Equal(t, gputypes.BlendFactorOne, add.Color.SrcFactor)
		assert.Equal(t, gputypes.BlendFactorOne, add.Color.DstFactor)
	}

	multiply := AlphaModeMultiply.BlendState()
	if assert.NotNil(t, multiply) {
		assert.Equal(t, gputypes.BlendFactorDst, multiply.Color.SrcFactor)
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, White.Linear())
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, Black.Linear())

	lin := RGBA(0.5, 0.04, 1, 0.5).Linear()
	assert.InDelta(t, 0.2140, lin[0], 1e-4)
	assert.InDelta(t, 0.04/12.92, lin[1], 1e-6)
	assert.Equal(t, float32(0.5), lin[3], "alpha stays linear")

	back := ColorFromLinear(lin)
	assert.InDelta(t, 0.5, back.R, 1e-5)
	assert.InDelta(t, 0.04, back.G, 1e-5)

	assert.True(t, RGBA(1, 1, 1, 0.99).Translucent())
	assert.False(t, RGB(0.2, 0.2, 0.2).Translucent())
}

func TestPipelineDescriptor_ApplyKey(t *testing.T) {
	var desc PipelineDescriptor
	desc.AddShaderDef("EXTRA")
	key := PipelineKey{UseColor: true, NormalMap: true, Alpha: AlphaModeBlend, CullMode: gputypes.CullModeNone, DepthBias: 3}
	desc.ApplyKey(key)
	desc.ApplyKey(key)

	assert.Equal(t, []string{"EXTRA", ShaderDefUseColor, ShaderDefNormalMap}, desc.ShaderDefs)
	assert.Equal(t, AlphaModeBlend.BlendState(), desc.Blend)
	assert.Equal(t, gputypes.CullModeNone, desc.CullMode)
	assert.Equal(t, int32(3), desc.DepthBias)

	desc.ApplyKey(PipelineKey{Alpha: AlphaModeOpaque})
	assert.Nil(t, desc.Blend)
}
