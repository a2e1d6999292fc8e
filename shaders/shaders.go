package shaders

import (
	_ "embed"

	gekko "github.com/gekko3d/gekko-npr"
)

//go:embed view_bindings.wgsl
var ViewBindingsWGSL string

//go:embed custom_shader.wgsl
var CustomShaderWGSL string

//go:embed toon_bindings.wgsl
var ToonBindingsWGSL string

//go:embed toon_fragment.wgsl
var ToonFragmentWGSL string

//go:embed toon_shader.wgsl
var ToonShaderWGSL string

var (
	ViewBindingsId = gekko.WeakAssetId(1107985723454826657)
	CustomShaderId = gekko.WeakAssetId(1107985723454826658)
	ToonShaderId   = gekko.WeakAssetId(1107985723454826659)
	ToonBindingsId = gekko.WeakAssetId(1107985723454826660)
	ToonFragmentId = gekko.WeakAssetId(1107985723454826661)
)

// RegisterViewBindings registers the camera, light and mesh bindings every
// material shader imports.
func RegisterViewBindings(server *gekko.AssetServer) error {
	return server.RegisterShader(ViewBindingsId, "view_bindings.wgsl", ViewBindingsWGSL)
}

func RegisterCustom(server *gekko.AssetServer) error {
	if err := RegisterViewBindings(server); err != nil {
		return err
	}
	return server.RegisterShader(CustomShaderId, "custom_shader.wgsl", CustomShaderWGSL, ViewBindingsId)
}

// RegisterToon registers the three toon shader pieces. The fragment piece
// imports the bindings and the entry points import the fragment piece.
func RegisterToon(server *gekko.AssetServer) error {
	if err := RegisterViewBindings(server); err != nil {
		return err
	}
	if err := server.RegisterShader(ToonBindingsId, "toon_bindings.wgsl", ToonBindingsWGSL, ViewBindingsId); err != nil {
		return err
	}
	if err := server.RegisterShader(ToonFragmentId, "toon_fragment.wgsl", ToonFragmentWGSL, ToonBindingsId); err != nil {
		return err
	}
	return server.RegisterShader(ToonShaderId, "toon_shader.wgsl", ToonShaderWGSL, ToonFragmentId)
}
