package gekko

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gogpu/gputypes"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded texture. An image that was reserved but not yet (or
// never successfully) decoded has Loaded == false.
type Image struct {
	Path    string
	Texels  []uint8
	Width   uint32
	Height  uint32
	Format  gputypes.TextureFormat
	Loaded  bool
	Version uint
}

// AssetServer owns images, shaders and glTF documents. Paths are resolved
// relative to Root.
type AssetServer struct {
	mu      sync.RWMutex
	root    string
	images  map[AssetId]*Image
	shaders map[AssetId]*ShaderAsset
	gltfs   map[AssetId]*GltfAsset
}

type AssetServerModule struct {
	Root string
}

func (m AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer(m.Root))
}

func NewAssetServer(root string) *AssetServer {
	return &AssetServer{
		root:    root,
		images:  make(map[AssetId]*Image),
		shaders: make(map[AssetId]*ShaderAsset),
		gltfs:   make(map[AssetId]*GltfAsset),
	}
}

func (server *AssetServer) Root() string {
	return server.root
}

func (server *AssetServer) resolve(path string) string {
	if server.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(server.root, path)
}

// ReserveImage returns a handle whose content arrives later through SetImage.
func (server *AssetServer) ReserveImage(path string) Handle[Image] {
	id := makeAssetId()

	server.mu.Lock()
	server.images[id] = &Image{Path: path}
	server.mu.Unlock()

	return Handle[Image]{Id: id}
}

func (server *AssetServer) CreateImage(texels []uint8, width, height uint32, format gputypes.TextureFormat) Handle[Image] {
	h := server.ReserveImage("")
	server.SetImage(h, texels, width, height, format)
	return h
}

func (server *AssetServer) SetImage(h Handle[Image], texels []uint8, width, height uint32, format gputypes.TextureFormat) {
	server.mu.Lock()
	defer server.mu.Unlock()

	img, ok := server.images[h.Id]
	if !ok {
		img = &Image{}
		server.images[h.Id] = img
	}
	img.Texels = texels
	img.Width = width
	img.Height = height
	img.Format = format
	img.Loaded = true
	img.Version++
}

// LoadImage decodes an sRGB color image from disk. On failure the returned
// handle stays valid but unloaded.
func (server *AssetServer) LoadImage(path string) (Handle[Image], error) {
	return server.loadImage(path, gputypes.TextureFormatRGBA8UnormSrgb)
}

// LoadImageLinear decodes data textures such as normal maps without sRGB
// conversion.
func (server *AssetServer) LoadImageLinear(path string) (Handle[Image], error) {
	return server.loadImage(path, gputypes.TextureFormatRGBA8Unorm)
}

func (server *AssetServer) loadImage(path string, format gputypes.TextureFormat) (Handle[Image], error) {
	h := server.ReserveImage(path)

	file, err := os.Open(server.resolve(path))
	if err != nil {
		return h, fmt.Errorf("load image %q: %w", path, err)
	}
	defer file.Close()

	if err := server.DecodeImage(h, file, format); err != nil {
		return h, fmt.Errorf("load image %q: %w", path, err)
	}
	return h, nil
}

// DecodeImage decodes png, jpeg, bmp, tiff or webp data into h as RGBA8.
func (server *AssetServer) DecodeImage(h Handle[Image], r io.Reader, format gputypes.TextureFormat) error {
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	}

	server.SetImage(h, rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), format)
	return nil
}

func (server *AssetServer) Image(h Handle[Image]) (*Image, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()

	img, ok := server.images[h.Id]
	return img, ok
}

// FormatOf reports the pixel format of a loaded image. Unknown or not yet
// loaded images report false.
func (server *AssetServer) FormatOf(id AssetId) (gputypes.TextureFormat, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()

	img, ok := server.images[id]
	if !ok || !img.Loaded {
		return gputypes.TextureFormatUndefined, false
	}
	return img.Format, true
}
