package material

// Pack builds the flag word the shaders read.
func Pack(features FeatureSet, code AlphaModeCode) uint32 {
	return features.Bits() | code.Bits()
}

// Decoded is what a shader recovers from a flag word.
type Decoded struct {
	Features  FeatureSet
	AlphaMode AlphaModeCode
}

// Unpack reads flags the way the shaders do: one AND per feature bit and a
// mask and shift for the alpha code.
func Unpack(flags uint32) Decoded {
	var s FeatureSet
	for _, b := range AllFeatures() {
		if flags&b.Mask() != 0 {
			s = s.With(b)
		}
	}
	return Decoded{
		Features:  s,
		AlphaMode: AlphaModeCode((flags & AlphaModeReservedBits) >> AlphaModeShiftBits),
	}
}
