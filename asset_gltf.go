package gekko

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GltfAsset is a loaded glTF document. Images holds one handle per glTF
// image; images that failed to load keep an unloaded handle.
type GltfAsset struct {
	Id       AssetId
	Path     string
	Scene    int
	Document *gltf.Document
	Images   []Handle[Image]
}

// GltfPrimitive marks an entity spawned for one primitive of a glTF mesh.
// Material is -1 when the primitive has no material.
type GltfPrimitive struct {
	Asset     AssetId
	Mesh      int
	Primitive int
	Material  int
}

// ParseSceneRef splits "path#SceneN" into path and N. A reference without a
// '#', or whose suffix is not Scene followed by a non-negative integer, is a
// plain path to scene 0.
func ParseSceneRef(ref string) (string, int) {
	i := strings.LastIndex(ref, "#")
	if i < 0 {
		return ref, 0
	}
	digits, ok := strings.CutPrefix(ref[i+1:], "Scene")
	if !ok {
		return ref, 0
	}
	n, err := strconv.ParseUint(digits, 10, 31)
	if err != nil {
		return ref, 0
	}
	return ref[:i], int(n)
}

// LoadGltf opens the document named by ref (see ParseSceneRef) and loads its
// images. A document that parsed is always returned; image failures are
// reported in err next to a valid handle.
func (server *AssetServer) LoadGltf(ref string) (Handle[GltfAsset], error) {
	p, scene := ParseSceneRef(ref)

	doc, err := gltf.Open(server.resolve(p))
	if err != nil {
		return Handle[GltfAsset]{}, fmt.Errorf("load gltf %q: %w", p, err)
	}

	asset := &GltfAsset{
		Id:       makeAssetId(),
		Path:     p,
		Scene:    scene,
		Document: doc,
	}
	imgErr := server.loadGltfImages(asset)

	server.mu.Lock()
	server.gltfs[asset.Id] = asset
	server.mu.Unlock()

	if imgErr != nil {
		imgErr = fmt.Errorf("load gltf %q: %w", p, imgErr)
	}
	return Handle[GltfAsset]{Id: asset.Id}, imgErr
}

func (server *AssetServer) Gltf(id AssetId) (*GltfAsset, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()

	a, ok := server.gltfs[id]
	return a, ok
}

// linearImages lists the images that hold data rather than color.
func linearImages(doc *gltf.Document) map[int]struct{} {
	res := make(map[int]struct{})
	mark := func(texture *int) {
		if texture == nil || *texture < 0 || *texture >= len(doc.Textures) || doc.Textures[*texture].Source == nil {
			return
		}
		res[*doc.Textures[*texture].Source] = struct{}{}
	}
	for _, m := range doc.Materials {
		if m.NormalTexture != nil {
			mark(m.NormalTexture.Index)
		}
		if m.OcclusionTexture != nil {
			mark(m.OcclusionTexture.Index)
		}
		if m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.MetallicRoughnessTexture != nil {
			idx := m.PBRMetallicRoughness.MetallicRoughnessTexture.Index
			mark(&idx)
		}
	}
	return res
}

func (server *AssetServer) loadGltfImages(asset *GltfAsset) error {
	doc := asset.Document
	linear := linearImages(doc)
	dir := path.Dir(asset.Path)

	var errs []error
	asset.Images = make([]Handle[Image], len(doc.Images))
	for i, img := range doc.Images {
		format := gputypes.TextureFormatRGBA8UnormSrgb
		if _, ok := linear[i]; ok {
			format = gputypes.TextureFormatRGBA8Unorm
		}

		switch {
		case img.BufferView != nil || img.IsEmbeddedResource():
			h := server.ReserveImage(fmt.Sprintf("%s#Image%d", asset.Path, i))
			asset.Images[i] = h

			data, err := gltfImageData(doc, img)
			if err == nil {
				err = server.DecodeImage(h, bytes.NewReader(data), format)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("image %d: %w", i, err))
			}
		case img.URI != "":
			h, err := server.loadImage(path.Join(dir, img.URI), format)
			asset.Images[i] = h
			if err != nil {
				errs = append(errs, fmt.Errorf("image %d: %w", i, err))
			}
		default:
			asset.Images[i] = server.ReserveImage("")
			errs = append(errs, fmt.Errorf("image %d has no source", i))
		}
	}
	return errors.Join(errs...)
}

func gltfImageData(doc *gltf.Document, img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		if *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		return modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	}
	return img.MarshalData()
}

// TextureImage returns the image behind a glTF texture index, or the nil
// handle when the index does not resolve.
func (asset *GltfAsset) TextureImage(texture int) Handle[Image] {
	doc := asset.Document
	if texture < 0 || texture >= len(doc.Textures) {
		return Handle[Image]{}
	}
	src := doc.Textures[texture].Source
	if src == nil || *src < 0 || *src >= len(asset.Images) {
		return Handle[Image]{}
	}
	return asset.Images[*src]
}

// SceneIndex is the scene to spawn: the requested one if it exists, then the
// document default, then -1 when the document has no scenes.
func (asset *GltfAsset) SceneIndex() int {
	doc := asset.Document
	switch {
	case asset.Scene >= 0 && asset.Scene < len(doc.Scenes):
		return asset.Scene
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		return *doc.Scene
	case len(doc.Scenes) > 0:
		return 0
	}
	return -1
}

// SpawnGltfScene spawns one entity per node of the asset's scene and one
// child entity per mesh primitive. Root nodes are parented to parent when it
// is non-nil. It returns the root entities.
func SpawnGltfScene(cmd *Commands, asset *GltfAsset, parent *EntityId) []EntityId {
	scene := asset.SceneIndex()
	if scene < 0 {
		return nil
	}

	var roots []EntityId
	for _, n := range asset.Document.Scenes[scene].Nodes {
		if n < 0 || n >= len(asset.Document.Nodes) {
			continue
		}
		roots = append(roots, spawnGltfNode(cmd, asset, n, parent, 0))
	}
	return roots
}

const maxGltfDepth = 64

func spawnGltfNode(cmd *Commands, asset *GltfAsset, index int, parent *EntityId, depth int) EntityId {
	doc := asset.Document
	node := doc.Nodes[index]

	local := gltfNodeTransform(node)
	components := []any{
		NameComponent{Name: node.Name},
		local,
		local.Local(),
	}
	if parent != nil {
		components = append(components, Parent{Entity: *parent})
	}
	eid := cmd.AddEntity(components...)

	if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(doc.Meshes) {
		for pi, prim := range doc.Meshes[*node.Mesh].Primitives {
			material := -1
			if prim.Material != nil {
				material = *prim.Material
			}
			id := IdentityTransform()
			cmd.AddEntity(
				NameComponent{Name: fmt.Sprintf("%s.%d", doc.Meshes[*node.Mesh].Name, pi)},
				id,
				id.Local(),
				Parent{Entity: eid},
				GltfPrimitive{Asset: asset.Id, Mesh: *node.Mesh, Primitive: pi, Material: material},
			)
		}
	}

	if depth < maxGltfDepth {
		for _, child := range node.Children {
			if child >= 0 && child < len(doc.Nodes) {
				spawnGltfNode(cmd, asset, child, &eid, depth+1)
			}
		}
	}
	return eid
}

// gltfNodeTransform reads a node's TRS properties, or decomposes its matrix
// when one is given.
func gltfNodeTransform(node *gltf.Node) TransformComponent {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return decomposeMatrix(m)
	}
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return TransformComponent{
		Position: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation: mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		Scale:    mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

// decomposeMatrix splits a column-major affine matrix into translation,
// rotation and scale. A mirrored basis keeps its sign in Scale.X.
func decomposeMatrix(m [16]float64) TransformComponent {
	var mat mgl32.Mat4
	for i, v := range m {
		mat[i] = float32(v)
	}

	scale := mgl32.Vec3{
		mat.Col(0).Vec3().Len(),
		mat.Col(1).Vec3().Len(),
		mat.Col(2).Vec3().Len(),
	}
	if mat.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		if scale[c] == 0 {
			return TransformComponent{Position: mat.Col(3).Vec3(), Rotation: mgl32.QuatIdent(), Scale: scale}
		}
		col := mat.Col(c).Vec3().Mul(1 / scale[c])
		rot.SetCol(c, col.Vec4(0))
	}

	return TransformComponent{
		Position: mat.Col(3).Vec3(),
		Rotation: mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:    scale,
	}
}
