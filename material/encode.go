package material

import (
	"math"

	gekko "github.com/gekko3d/gekko-npr"
	"github.com/gogpu/gputypes"
)

// FormatLookup resolves a texture to its pixel format. Textures that are
// unknown or still loading report false.
type FormatLookup interface {
	FormatOf(id gekko.AssetId) (gputypes.TextureFormat, bool)
}

type FormatLookupFunc func(id gekko.AssetId) (gputypes.TextureFormat, bool)

func (f FormatLookupFunc) FormatOf(id gekko.AssetId) (gputypes.TextureFormat, bool) {
	return f(id)
}

// IsTwoComponentUnorm reports whether normal maps in this format store only
// X and Y.
func IsTwoComponentUnorm(format gputypes.TextureFormat) bool {
	switch format {
	case gputypes.TextureFormatRG8Unorm,
		gputypes.TextureFormatRG16Unorm,
		gputypes.TextureFormatBC5RGUnorm,
		gputypes.TextureFormatEACRG11Unorm:
		return true
	}
	return false
}

// Description is what the encoder reads from a material. Texture slots hold
// the texture's asset id; the nil id means the slot is empty.
type Description struct {
	BaseColor Color
	Emissive  Color
	AlphaMode AlphaMode

	BaseColorTexture            gekko.AssetId
	EmissiveTexture             gekko.AssetId
	MetallicRoughnessTexture    gekko.AssetId
	OcclusionTexture            gekko.AssetId
	NormalMapTexture            gekko.AssetId
	DepthMap                    gekko.AssetId
	SpecularTransmissionTexture gekko.AssetId
	ThicknessTexture            gekko.AssetId
	DiffuseTransmissionTexture  gekko.AssetId

	DoubleSided    bool
	Unlit          bool
	FogEnabled     bool
	FlipNormalMapY bool

	AttenuationDistance float32
}

// NewDescription returns an opaque white description with no textures and
// attenuation disabled.
func NewDescription() Description {
	return Description{
		BaseColor:           White,
		Emissive:            Black,
		AttenuationDistance: float32(math.Inf(1)),
	}
}

// Encoded is the decoded form of a flag word plus the alpha cutoff that
// travels next to it in the uniform.
type Encoded struct {
	Features    FeatureSet
	AlphaMode   AlphaModeCode
	AlphaCutoff float32
}

func (e Encoded) Flags() uint32 {
	return Pack(e.Features, e.AlphaMode)
}

// Encode derives the feature set, alpha code and cutoff of desc. formats may
// be nil, in which case no normal map counts as two-component.
func Encode(desc Description, formats FormatLookup) Encoded {
	var s FeatureSet
	s = s.Set(BaseColorTexture, !desc.BaseColorTexture.IsNil())
	s = s.Set(EmissiveTexture, !desc.EmissiveTexture.IsNil())
	s = s.Set(MetallicRoughnessTexture, !desc.MetallicRoughnessTexture.IsNil())
	s = s.Set(OcclusionTexture, !desc.OcclusionTexture.IsNil())
	s = s.Set(DoubleSided, desc.DoubleSided)
	s = s.Set(Unlit, desc.Unlit)
	s = s.Set(FogEnabled, desc.FogEnabled)
	s = s.Set(DepthMap, !desc.DepthMap.IsNil())
	s = s.Set(SpecularTransmissionTexture, !desc.SpecularTransmissionTexture.IsNil())
	s = s.Set(ThicknessTexture, !desc.ThicknessTexture.IsNil())
	s = s.Set(DiffuseTransmissionTexture, !desc.DiffuseTransmissionTexture.IsNil())

	if !desc.NormalMapTexture.IsNil() {
		if formats != nil {
			if format, ok := formats.FormatOf(desc.NormalMapTexture); ok && IsTwoComponentUnorm(format) {
				s = s.With(TwoComponentNormalMap)
			}
		}
		s = s.Set(FlipNormalMapY, desc.FlipNormalMapY)
	}

	d := float64(desc.AttenuationDistance)
	s = s.Set(AttenuationEnabled, !math.IsInf(d, 0) && !math.IsNaN(d))

	return Encoded{
		Features:    s,
		AlphaMode:   desc.AlphaMode.Code(),
		AlphaCutoff: desc.AlphaMode.Cutoff(),
	}
}
