package material

import (
	"slices"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gogpu/gputypes"
)

// Shader defs understood by the material shaders.
const (
	ShaderDefUseColor  = "USE_COLOR"
	ShaderDefNormalMap = "NORMAL_MAP"
)

// PipelineKey holds the material properties that need a distinct pipeline.
type PipelineKey struct {
	UseColor  bool
	NormalMap bool
	Alpha     AlphaModeCode
	CullMode  gputypes.CullMode
	DepthBias int32
}

// PipelineDescriptor is the backend independent description of a material
// render pipeline.
type PipelineDescriptor struct {
	Label              string
	Shader             gekko.AssetId
	VertexEntryPoint   string
	FragmentEntryPoint string
	ShaderDefs         []string
	BindGroupLayout    []gputypes.BindGroupLayoutEntry
	UniformSize        uint64
	Blend              *gputypes.BlendState
	CullMode           gputypes.CullMode
	FrontFace          gputypes.FrontFace
	DepthBias          int32
}

func (d *PipelineDescriptor) AddShaderDef(def string) {
	if !slices.Contains(d.ShaderDefs, def) {
		d.ShaderDefs = append(d.ShaderDefs, def)
	}
}

// ApplyKey applies the parts of a key every material treats the same way.
func (d *PipelineDescriptor) ApplyKey(key PipelineKey) {
	if key.UseColor {
		d.AddShaderDef(ShaderDefUseColor)
	}
	if key.NormalMap {
		d.AddShaderDef(ShaderDefNormalMap)
	}
	d.Blend = key.Alpha.BlendState()
	d.CullMode = key.CullMode
	d.DepthBias = key.DepthBias
}
