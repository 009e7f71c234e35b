package ocr

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotate turns img counter-clockwise by deg, which must be a multiple of 90. The
// canvas grows to fit, so 90 and 270 swap width and height.
func Rotate(img image.Image, deg int) (image.Image, error) {
	deg = ((deg % 360) + 360) % 360
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	mx, my := float64(b.Min.X), float64(b.Min.Y)

	var s2d f64.Aff3
	var dr image.Rectangle
	switch deg {
	case 0:
		return img, nil
	case 90:
		s2d = f64.Aff3{0, 1, -my, -1, 0, mx + w}
		dr = image.Rect(0, 0, b.Dy(), b.Dx())
	case 180:
		s2d = f64.Aff3{-1, 0, mx + w, 0, -1, my + h}
		dr = image.Rect(0, 0, b.Dx(), b.Dy())
	case 270:
		s2d = f64.Aff3{0, -1, my + h, 1, 0, -mx}
		dr = image.Rect(0, 0, b.Dy(), b.Dx())
	default:
		return nil, fmt.Errorf("rotation must be a multiple of 90, got %d", deg)
	}

	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(dr)
	} else {
		dst = image.NewRGBA(dr)
	}
	draw.NearestNeighbor.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst, nil
}

// Preprocess converts img to 8-bit grayscale and stretches its histogram so the
// darkest level becomes black and the lightest white.
func Preprocess(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	autocontrast(gray)
	return gray
}

// autocontrast remaps levels linearly from [min, max] to [0, 255] in place.
func autocontrast(g *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, v := range g.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return
	}
	span := int(hi) - int(lo)
	var lut [256]uint8
	for i := range lut {
		v := (i - int(lo)) * 255 / span
		lut[i] = uint8(min(max(v, 0), 255))
	}
	for i, v := range g.Pix {
		g.Pix[i] = lut[v]
	}
}
