package material

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// AlphaModeCode is the 3-bit alpha mode stored at the top of the flag word.
// Codes 6 and 7 are reserved.
type AlphaModeCode uint8

const (
	AlphaModeOpaque AlphaModeCode = iota
	AlphaModeMask
	AlphaModeBlend
	AlphaModePremultiplied
	AlphaModeAdd
	AlphaModeMultiply

	alphaModeCodeCount = iota
)

const (
	AlphaModeMaskBits     uint32 = 0b111
	AlphaModeShiftBits    uint32 = 29
	AlphaModeReservedBits uint32 = AlphaModeMaskBits << AlphaModeShiftBits
)

// DefaultAlphaCutoff is written to the uniform for every mode except Mask.
const DefaultAlphaCutoff float32 = 0.5

var alphaModeNames = [alphaModeCodeCount]string{"OPAQUE", "MASK", "BLEND", "PREMULTIPLIED", "ADD", "MULTIPLY"}

// AllAlphaModes lists the defined codes in order.
func AllAlphaModes() []AlphaModeCode {
	return []AlphaModeCode{AlphaModeOpaque, AlphaModeMask, AlphaModeBlend, AlphaModePremultiplied, AlphaModeAdd, AlphaModeMultiply}
}

func (c AlphaModeCode) Valid() bool {
	return c < alphaModeCodeCount
}

// Bits returns the code shifted into the reserved sub-field.
func (c AlphaModeCode) Bits() uint32 {
	return (uint32(c) & AlphaModeMaskBits) << AlphaModeShiftBits
}

func (c AlphaModeCode) String() string {
	if !c.Valid() {
		return fmt.Sprintf("RESERVED(%d)", uint8(c))
	}
	return alphaModeNames[c]
}

// ShaderConst is the shader's name for this code, e.g.
// TOON_MATERIAL_FLAGS_ALPHA_MODE_BLEND.
func (c AlphaModeCode) ShaderConst(prefix string) string {
	return prefix + "_ALPHA_MODE_" + c.String()
}

// BlendState returns the color target blending for the code, or nil when the
// target is written without blending.
func (c AlphaModeCode) BlendState() *gputypes.BlendState {
	var state gputypes.BlendState
	switch c {
	case AlphaModeBlend:
		state = gputypes.BlendStateAlpha()
	case AlphaModePremultiplied:
		state = gputypes.BlendStatePremultiplied()
	case AlphaModeAdd:
		state = gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorZero,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	case AlphaModeMultiply:
		state = gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorDst,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
	return &state
}

// AlphaMode is how a surface's alpha is composited. Cutoff is only
// meaningful for Mask.
type AlphaMode struct {
	code   AlphaModeCode
	cutoff float32
}

func AlphaOpaque() AlphaMode        { return AlphaMode{code: AlphaModeOpaque} }
func AlphaBlend() AlphaMode         { return AlphaMode{code: AlphaModeBlend} }
func AlphaPremultiplied() AlphaMode { return AlphaMode{code: AlphaModePremultiplied} }
func AlphaAdd() AlphaMode           { return AlphaMode{code: AlphaModeAdd} }
func AlphaMultiply() AlphaMode      { return AlphaMode{code: AlphaModeMultiply} }

// AlphaMask discards fragments whose alpha is below cutoff.
func AlphaMask(cutoff float32) AlphaMode {
	return AlphaMode{code: AlphaModeMask, cutoff: cutoff}
}

func (m AlphaMode) Code() AlphaModeCode {
	return m.code
}

// Cutoff returns the mask cutoff, or DefaultAlphaCutoff for other modes.
func (m AlphaMode) Cutoff() float32 {
	if m.code == AlphaModeMask {
		return m.cutoff
	}
	return DefaultAlphaCutoff
}

func (m AlphaMode) String() string {
	if m.code == AlphaModeMask {
		return fmt.Sprintf("MASK(%g)", m.cutoff)
	}
	return m.code.String()
}
