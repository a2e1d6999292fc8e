package material

import (
	"slices"

	"github.com/gogpu/gputypes"
)

// UniformBinding is where every material keeps its uniform buffer.
const UniformBinding uint32 = 0

// Bind group indices shared by all material shaders.
const (
	ViewGroup     uint32 = 0
	MeshGroup     uint32 = 1
	MaterialGroup uint32 = 2
)

// BindGroupLayout describes a material bind group: the uniform at binding 0
// followed by a texture and sampler pair per slot, ordered by binding.
func BindGroupLayout(uniformSize uint64, slots []TextureSlot) []gputypes.BindGroupLayoutEntry {
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    UniformBinding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: uniformSize,
		},
	}}

	for _, slot := range slots {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    slot.Binding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    slot.SamplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler: &gputypes.SamplerBindingLayout{
					Type: gputypes.SamplerBindingTypeFiltering,
				},
			},
		)
	}

	slices.SortFunc(entries, func(a, b gputypes.BindGroupLayoutEntry) int {
		return int(a.Binding) - int(b.Binding)
	})
	return entries
}
