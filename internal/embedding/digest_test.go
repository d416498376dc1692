package embedding

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func fillRect(img draw.Image, c color.Color) {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func TestSketchDigest_SamePixelsSameDigest(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b := image.NewRGBA(image.Rect(0, 0, 8, 8))
	fillRect(a, color.Black)
	fillRect(b, color.Black)

	if SketchDigest(a) != SketchDigest(b) {
		t.Error("identical pixel buffers must produce the same digest")
	}
}

func TestSketchDigest_IndependentOfRepresentation(t *testing.T) {
	// Same pixels decoded into different in-memory types must hash the same.
	rgba := image.NewRGBA(image.Rect(0, 0, 8, 8))
	nrgba := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	fillRect(rgba, color.White)
	fillRect(nrgba, color.White)

	if SketchDigest(rgba) != SketchDigest(nrgba) {
		t.Error("digest must depend on pixel content, not the decoded type")
	}
}

func TestSketchDigest_DifferentPixelsDifferentDigest(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b := image.NewRGBA(image.Rect(0, 0, 8, 8))
	fillRect(a, color.Black)
	fillRect(b, color.White)

	if SketchDigest(a) == SketchDigest(b) {
		t.Error("different pixels must produce different digests")
	}
}

func TestSketchDigest_DimensionsMatter(t *testing.T) {
	// A 2x8 and an 8x2 all-black image have identical pixel bytes; the
	// digest must still distinguish them.
	a := image.NewRGBA(image.Rect(0, 0, 2, 8))
	b := image.NewRGBA(image.Rect(0, 0, 8, 2))
	fillRect(a, color.Black)
	fillRect(b, color.Black)

	if SketchDigest(a) == SketchDigest(b) {
		t.Error("digest must include image dimensions")
	}
}

func TestSketchDigest_OffsetBoundsNormalized(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(10, 10, 14, 14))
	fillRect(a, color.Black)
	fillRect(b, color.Black)

	if SketchDigest(a) != SketchDigest(b) {
		t.Error("digest must be independent of the bounds origin")
	}
}
