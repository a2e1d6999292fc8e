package material

import (
	"math/bits"
	"strings"
)

// FeatureBit is one of the independent boolean conditions packed into the
// low bits of a material's flag word. The order is shared with the shaders.
type FeatureBit uint8

const (
	BaseColorTexture FeatureBit = iota
	EmissiveTexture
	MetallicRoughnessTexture
	OcclusionTexture
	DoubleSided
	Unlit
	TwoComponentNormalMap
	FlipNormalMapY
	FogEnabled
	DepthMap
	SpecularTransmissionTexture
	ThicknessTexture
	DiffuseTransmissionTexture
	AttenuationEnabled

	FeatureBitCount = iota
)

// FeatureMask covers every feature bit.
const FeatureMask uint32 = 1<<FeatureBitCount - 1

var featureNames = [FeatureBitCount]string{
	"BASE_COLOR_TEXTURE",
	"EMISSIVE_TEXTURE",
	"METALLIC_ROUGHNESS_TEXTURE",
	"OCCLUSION_TEXTURE",
	"DOUBLE_SIDED",
	"UNLIT",
	"TWO_COMPONENT_NORMAL_MAP",
	"FLIP_NORMAL_MAP_Y",
	"FOG_ENABLED",
	"DEPTH_MAP",
	"SPECULAR_TRANSMISSION_TEXTURE",
	"THICKNESS_TEXTURE",
	"DIFFUSE_TRANSMISSION_TEXTURE",
	"ATTENUATION_ENABLED",
}

// AllFeatures lists every feature bit in bit order.
func AllFeatures() []FeatureBit {
	res := make([]FeatureBit, FeatureBitCount)
	for i := range res {
		res[i] = FeatureBit(i)
	}
	return res
}

func (b FeatureBit) Valid() bool {
	return b < FeatureBitCount
}

func (b FeatureBit) Mask() uint32 {
	if !b.Valid() {
		return 0
	}
	return 1 << b
}

func (b FeatureBit) String() string {
	if !b.Valid() {
		return "UNKNOWN"
	}
	return featureNames[b]
}

// ShaderConst is the name the shaders give this bit, e.g.
// CUSTOM_MATERIAL_FLAGS_UNLIT_BIT for prefix CUSTOM_MATERIAL_FLAGS.
func (b FeatureBit) ShaderConst(prefix string) string {
	return prefix + "_" + b.String() + "_BIT"
}

// FeatureSet is a set of feature bits. Bits outside FeatureMask are never
// stored.
type FeatureSet uint32

func NewFeatureSet(features ...FeatureBit) FeatureSet {
	var s FeatureSet
	for _, f := range features {
		s = s.With(f)
	}
	return s
}

func (s FeatureSet) Has(b FeatureBit) bool {
	return b.Valid() && uint32(s)&b.Mask() != 0
}

func (s FeatureSet) With(b FeatureBit) FeatureSet {
	return s | FeatureSet(b.Mask())
}

func (s FeatureSet) Without(b FeatureBit) FeatureSet {
	return s &^ FeatureSet(b.Mask())
}

// Set adds or removes b depending on on.
func (s FeatureSet) Set(b FeatureBit, on bool) FeatureSet {
	if on {
		return s.With(b)
	}
	return s.Without(b)
}

func (s FeatureSet) Bits() uint32 {
	return uint32(s) & FeatureMask
}

func (s FeatureSet) Len() int {
	return bits.OnesCount32(s.Bits())
}

// Slice returns the members in bit order.
func (s FeatureSet) Slice() []FeatureBit {
	var res []FeatureBit
	for _, b := range AllFeatures() {
		if s.Has(b) {
			res = append(res, b)
		}
	}
	return res
}

func (s FeatureSet) String() string {
	members := s.Slice()
	if len(members) == 0 {
		return "NONE"
	}
	names := make([]string, len(members))
	for i, b := range members {
		names[i] = b.String()
	}
	return strings.Join(names, "|")
}
