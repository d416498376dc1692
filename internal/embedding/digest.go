package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"
	"image/draw"
)

// SketchDigest returns a stable content hash for a sketch image. The hash is
// computed over the image's dimensions and its RGBA pixel buffer, so two
// bit-identical sketches produce the same digest regardless of the source
// encoding or decode path. Used only as a cache key within one process.
func SketchDigest(img image.Image) string {
	rgba := toRGBA(img)
	h := sha256.New()

	var dims [8]byte
	b := rgba.Bounds()
	binary.BigEndian.PutUint32(dims[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:8], uint32(b.Dy()))
	h.Write(dims[:])
	h.Write(rgba.Pix)

	return hex.EncodeToString(h.Sum(nil))
}

// toRGBA returns img as an origin-anchored *image.RGBA, copying only when the
// source is not already in that form.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
