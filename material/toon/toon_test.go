package toon

import (
	"testing"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gekko3d/gekko-npr/material"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsUniform(t *testing.T) {
	tests := []struct {
		name   string
		mat    Material
		flags  uint32
		cutoff float32
	}{
		{"default", Default(), 0, 0.5},
		{"translucent color", FromColor(material.RGBA(1, 1, 1, 0.2)), 1073741824, 0.5},
		{"mask", Material{BaseColor: material.White, AlphaMode: material.AlphaMask(0.1)}, 536870912, 0.1},
		{"add", Material{BaseColor: material.White, AlphaMode: material.AlphaAdd()}, 2147483648, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, enc := tt.mat.AsUniform(nil)
			assert.Equal(t, tt.flags, u.Flags)
			assert.Equal(t, tt.cutoff, u.AlphaCutoff)
			assert.Zero(t, enc.Features.Bits(), "toon materials set no feature bits")
			assert.Len(t, material.UniformBytes(u), 32)
		})
	}
}

func TestKey(t *testing.T) {
	key := FromColor(material.RGBA(1, 0, 0, 0.5)).Key()
	assert.Equal(t, material.PipelineKey{UseColor: true, Alpha: material.AlphaModeBlend, CullMode: gputypes.CullModeBack}, key)
	assert.False(t, Default().Key().UseColor)
	assert.Empty(t, material.TextureSlots(Default()))
}

func TestFromGltf(t *testing.T) {
	server := gekko.NewAssetServer("")
	h, err := server.LoadGltf("../../testdata/scene.gltf")
	require.NoError(t, err)
	asset, _ := server.Gltf(h.Id)

	m := FromGltf(asset, 0)
	assert.Equal(t, material.AlphaModeMask, m.AlphaMode.Code())
	assert.Equal(t, float32(0.5), m.BaseColor.A)
	assert.Equal(t, DefaultDeferredLightingPassId, m.DeferredLightingPassId)
	assert.Equal(t, Default(), FromGltf(asset, -1))
}

func TestModule_ImportsGltf(t *testing.T) {
	app := gekko.NewApp().UseModules(gekko.AssetServerModule{Root: "../../testdata"}, Module{ImportGltf: true})
	cmd := app.Commands()
	server, _ := gekko.Resource[gekko.AssetServer](app)

	h, err := server.LoadGltf("scene.gltf#Scene0")
	require.NoError(t, err)
	asset, _ := server.Gltf(h.Id)
	gekko.SpawnGltfScene(cmd, asset, nil)
	app.RunFrames(1)

	prepared, ok := gekko.Resource[material.Prepared[Material]](app)
	require.True(t, ok)

	var flags []uint32
	gekko.MakeQuery1[material.MeshMaterial[Material]](cmd).Map(func(eid gekko.EntityId, mm *material.MeshMaterial[Material]) bool {
		pm, ok := prepared.Get(mm.Handle)
		require.True(t, ok)
		flags = append(flags, pm.Flags)
		return true
	})
	assert.ElementsMatch(t, []uint32{material.AlphaModeMask.Bits(), 0}, flags)
}
