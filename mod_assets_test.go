package gekko

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets_InsertGetRemove(t *testing.T) {
	a := NewAssets[string]()
	h := a.Add("one")
	fixed := HandleOf[string](WeakAssetId(42))
	a.Insert(fixed, "two")

	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, "one", *v)
	assert.Equal(t, 2, a.Len())

	a.Insert(fixed, "three")
	v, _ = a.Get(fixed)
	assert.Equal(t, "three", *v)
	assert.Equal(t, 2, a.Len())

	a.Remove(h)
	_, ok = a.Get(h)
	assert.False(t, ok)
	assert.Equal(t, 1, a.Len())
}

func TestAssets_EachInInsertionOrder(t *testing.T) {
	a := NewAssets[int]()
	for i := range 5 {
		a.Add(i)
	}

	var got []int
	a.Each(func(h Handle[int], v *int) bool {
		got = append(got, *v)
		return *v < 2
	})
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestAssets_DrainChanged(t *testing.T) {
	a := NewAssets[int]()
	h1 := a.Add(1)
	h2 := a.Add(2)
	assert.Equal(t, []Handle[int]{h1, h2}, a.DrainChanged())
	assert.Empty(t, a.DrainChanged())

	v, ok := a.GetMut(h2)
	require.True(t, ok)
	*v = 3
	assert.Equal(t, []Handle[int]{h2}, a.DrainChanged())
}

func TestWeakAssetId(t *testing.T) {
	assert.Equal(t, WeakAssetId(7), WeakAssetId(7))
	assert.NotEqual(t, WeakAssetId(7), WeakAssetId(8))
	assert.False(t, WeakAssetId(0).IsNil())
	assert.True(t, Handle[Image]{}.IsNil())
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAssetServer_LoadImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex.png"), encodePNG(t, 3, 2), 0o644))
	server := NewAssetServer(dir)

	h, err := server.LoadImage("tex.png")
	require.NoError(t, err)
	img, ok := server.Image(h)
	require.True(t, ok)
	assert.True(t, img.Loaded)
	assert.Equal(t, uint32(3), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Len(t, img.Texels, 3*2*4)
	assert.Equal(t, []uint8{10, 0, 7, 255}, img.Texels[4:8])

	format, ok := server.FormatOf(h.Id)
	require.True(t, ok)
	assert.Equal(t, gputypes.TextureFormatRGBA8UnormSrgb, format)

	lin, err := server.LoadImageLinear("tex.png")
	require.NoError(t, err)
	format, _ = server.FormatOf(lin.Id)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, format)
}

func TestAssetServer_LoadImageMissingKeepsHandle(t *testing.T) {
	server := NewAssetServer(t.TempDir())

	h, err := server.LoadImage("missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")

	img, ok := server.Image(h)
	require.True(t, ok)
	assert.False(t, img.Loaded)
	_, ok = server.FormatOf(h.Id)
	assert.False(t, ok)
}

func TestAssetServer_ReserveThenSet(t *testing.T) {
	server := NewAssetServer("")
	h := server.ReserveImage("later")

	_, ok := server.FormatOf(h.Id)
	assert.False(t, ok)

	server.SetImage(h, []uint8{1, 2, 1, 2}, 2, 1, gputypes.TextureFormatRG8Unorm)
	format, ok := server.FormatOf(h.Id)
	require.True(t, ok)
	assert.Equal(t, gputypes.TextureFormatRG8Unorm, format)

	img, _ := server.Image(h)
	assert.Equal(t, uint(1), img.Version)
	server.SetImage(h, []uint8{3, 4, 3, 4}, 2, 1, gputypes.TextureFormatRG8Unorm)
	assert.Equal(t, uint(2), img.Version)
}

func TestAssetServer_DecodeImageRejectsGarbage(t *testing.T) {
	server := NewAssetServer("")
	h := server.ReserveImage("")
	assert.Error(t, server.DecodeImage(h, bytes.NewReader([]byte("not an image")), gputypes.TextureFormatRGBA8Unorm))
}
