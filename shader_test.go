package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCommonWGSL = `
const FLAG_A_BIT: u32 = 4u;

struct Params {
    color: vec4<f32>,
    flags: u32,
    cutoff: f32,
}
`

const testShaderWGSL = `
@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vertex(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}

@fragment
fn fragment() -> @location(0) vec4<f32> {
#ifdef TINT
    return params.color;
#else
    return vec4<f32>(1.0);
#endif
}
`

var (
	testCommonId = WeakAssetId(1)
	testShaderId = WeakAssetId(2)
)

func TestRegisterShader_Reflects(t *testing.T) {
	server := NewAssetServer("")
	require.NoError(t, server.RegisterShader(testCommonId, "common", testCommonWGSL))
	require.NoError(t, server.RegisterShader(testShaderId, "shader", testShaderWGSL, testCommonId))

	s, ok := server.Shader(testShaderId)
	require.True(t, ok)
	assert.Equal(t, "shader", s.Name)
	assert.ElementsMatch(t, []string{"vertex", "fragment"}, s.EntryPoints())

	st, ok := s.Struct("Params")
	require.True(t, ok)
	assert.Equal(t, []ShaderStructMember{{"color", 0}, {"flags", 16}, {"cutoff", 20}}, st.Members)
	assert.Equal(t, uint32(32), st.Span)

	v, ok := s.U32Const("FLAG_A_BIT")
	require.True(t, ok)
	assert.Equal(t, uint32(4), v)

	_, ok = s.U32Const("MISSING")
	assert.False(t, ok)
	_, ok = s.Struct("Missing")
	assert.False(t, ok)
}

func TestRegisterShader_Idempotent(t *testing.T) {
	server := NewAssetServer("")
	require.NoError(t, server.RegisterShader(testCommonId, "common", testCommonWGSL))
	first, _ := server.Shader(testCommonId)

	require.NoError(t, server.RegisterShader(testCommonId, "common", testCommonWGSL))
	second, _ := server.Shader(testCommonId)
	assert.Equal(t, first.Composed, second.Composed)
}

func TestRegisterShader_Errors(t *testing.T) {
	server := NewAssetServer("")

	err := server.RegisterShader(testShaderId, "shader", testShaderWGSL, testCommonId)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing import")

	require.NoError(t, server.RegisterShader(testCommonId, "common", testCommonWGSL))
	err = server.RegisterShader(testCommonId, "common", "fn broken( {")
	require.Error(t, err)

	s, ok := server.Shader(testCommonId)
	require.True(t, ok, "a failed registration keeps the previous one")
	assert.Equal(t, testCommonWGSL, s.Source)
}

func TestShaderAsset_Specialize(t *testing.T) {
	server := NewAssetServer("")
	require.NoError(t, server.RegisterShader(testCommonId, "common", testCommonWGSL))
	require.NoError(t, server.RegisterShader(testShaderId, "shader", testShaderWGSL, testCommonId))
	s, _ := server.Shader(testShaderId)

	plain := s.Specialize(nil)
	assert.Contains(t, plain, "struct Params")
	assert.Contains(t, plain, "return vec4<f32>(1.0);")
	assert.NotContains(t, plain, "params.color;")

	tinted := s.Specialize([]string{"TINT"})
	assert.Contains(t, tinted, "return params.color;")
	assert.NotContains(t, tinted, "#")
}

func TestPreprocess(t *testing.T) {
	src := "a\n#ifdef X\nb\n#ifndef Y\nc\n#else\nd\n#endif\n#endif\ne\n"

	assert.Equal(t, "a\ne\n", Preprocess(src, nil))
	assert.Equal(t, "a\nb\nc\ne\n", Preprocess(src, []string{"X"}))
	assert.Equal(t, "a\nb\nd\ne\n", Preprocess(src, []string{"X", "Y"}))
}
