package render

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

func wgpuWrapMode(mode string) wgpu.AddressMode {
	switch mode {
	case "wrap":
		return wgpu.AddressModeRepeat
	case "mirror":
		return wgpu.AddressModeMirrorRepeat
	case "clamp":
		return wgpu.AddressModeClampToEdge
	default:
		panic("unsupported sampler wrap mode: " + mode)
	}
}

func wgpuFilterMode(filter string) wgpu.FilterMode {
	switch filter {
	case "linear":
		return wgpu.FilterModeLinear
	case "nearest":
		return wgpu.FilterModeNearest
	default:
		panic("unsupported sampler filter: " + filter)
	}
}

func wgpuTextureFormat(f gputypes.TextureFormat) (wgpu.TextureFormat, uint32) {
	switch f {
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb, 4
	case gputypes.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, 4
	case gputypes.TextureFormatRG8Unorm:
		return wgpu.TextureFormatRG8Unorm, 2
	case gputypes.TextureFormatR8Unorm:
		return wgpu.TextureFormatR8Unorm, 1
	case gputypes.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, 4
	default:
		panic(fmt.Sprintf("unsupported texture format: %v", f))
	}
}

func wgpuShaderStage(s gputypes.ShaderStage) wgpu.ShaderStage {
	var res wgpu.ShaderStage
	if s&gputypes.ShaderStageVertex != 0 {
		res |= wgpu.ShaderStageVertex
	}
	if s&gputypes.ShaderStageFragment != 0 {
		res |= wgpu.ShaderStageFragment
	}
	if s&gputypes.ShaderStageCompute != 0 {
		res |= wgpu.ShaderStageCompute
	}
	return res
}

func wgpuLayoutEntries(entries []gputypes.BindGroupLayoutEntry) []wgpu.BindGroupLayoutEntry {
	res := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
	for _, e := range entries {
		out := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: wgpuShaderStage(e.Visibility),
		}
		switch {
		case e.Buffer != nil:
			out.Buffer = wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				MinBindingSize:   e.Buffer.MinBindingSize,
				HasDynamicOffset: e.Buffer.HasDynamicOffset,
			}
		case e.Texture != nil:
			out.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  e.Texture.Multisampled,
			}
		case e.Sampler != nil:
			out.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}
		}
		res = append(res, out)
	}
	return res
}

func wgpuBlendFactor(f gputypes.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return wgpu.BlendFactorZero
	case gputypes.BlendFactorOne:
		return wgpu.BlendFactorOne
	case gputypes.BlendFactorSrc:
		return wgpu.BlendFactorSrc
	case gputypes.BlendFactorOneMinusSrc:
		return wgpu.BlendFactorOneMinusSrc
	case gputypes.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case gputypes.BlendFactorDst:
		return wgpu.BlendFactorDst
	case gputypes.BlendFactorOneMinusDst:
		return wgpu.BlendFactorOneMinusDst
	case gputypes.BlendFactorDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		panic(fmt.Sprintf("unsupported blend factor: %v", f))
	}
}

func wgpuBlendComponent(c gputypes.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		SrcFactor: wgpuBlendFactor(c.SrcFactor),
		DstFactor: wgpuBlendFactor(c.DstFactor),
		Operation: wgpu.BlendOperationAdd,
	}
}

func wgpuBlendState(b *gputypes.BlendState) *wgpu.BlendState {
	if b == nil {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpuBlendComponent(b.Color),
		Alpha: wgpuBlendComponent(b.Alpha),
	}
}

func wgpuCullMode(c gputypes.CullMode) wgpu.CullMode {
	switch c {
	case gputypes.CullModeFront:
		return wgpu.CullModeFront
	case gputypes.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func wgpuFrontFace(f gputypes.FrontFace) wgpu.FrontFace {
	if f == gputypes.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func parseVertexFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

// vertexBufferLayout reads `gekko:"layout" location:"N" format:"floatN"`
// tags from vertexType.
func vertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("Vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("gekko") == "layout" {
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				panic(err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         parseVertexFormat(field.Tag.Get("format")),
			})
		}
		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}
