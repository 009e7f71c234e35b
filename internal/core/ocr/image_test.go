package ocr

import (
	"image"
	"image/color"
	"testing"
)

func grayAt(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

// 3x2 image with a distinct level per pixel:
//
//	10 20 30
//	40 50 60
func sample() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(g.Pix, []uint8{10, 20, 30, 40, 50, 60})
	return g
}

func TestRotate(t *testing.T) {
	tests := []struct {
		deg  int
		w, h int
		want []uint8 // row-major
	}{
		{0, 3, 2, []uint8{10, 20, 30, 40, 50, 60}},
		// counter-clockwise: the right column becomes the top row
		{90, 2, 3, []uint8{30, 60, 20, 50, 10, 40}},
		{180, 3, 2, []uint8{60, 50, 40, 30, 20, 10}},
		{270, 2, 3, []uint8{40, 10, 50, 20, 60, 30}},
		{-90, 2, 3, []uint8{40, 10, 50, 20, 60, 30}},
	}
	for _, tt := range tests {
		got, err := Rotate(sample(), tt.deg)
		if err != nil {
			t.Fatalf("Rotate(%d) error = %v", tt.deg, err)
		}
		b := got.Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Fatalf("Rotate(%d) size = %dx%d, want %dx%d", tt.deg, b.Dx(), b.Dy(), tt.w, tt.h)
		}
		for y := 0; y < tt.h; y++ {
			for x := 0; x < tt.w; x++ {
				if v := grayAt(got, b.Min.X+x, b.Min.Y+y); v != tt.want[y*tt.w+x] {
					t.Errorf("Rotate(%d) at (%d,%d) = %d, want %d", tt.deg, x, y, v, tt.want[y*tt.w+x])
				}
			}
		}
	}
}

func TestRotateRejectsOddAngles(t *testing.T) {
	if _, err := Rotate(sample(), 45); err == nil {
		t.Error("Rotate(45) error = nil, want error")
	}
}

func TestPreprocessStretchesHistogram(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{100, 100, 100, 255})
	src.Set(1, 0, color.RGBA{150, 150, 150, 255})

	got := Preprocess(src)
	if v := got.GrayAt(0, 0).Y; v != 0 {
		t.Errorf("darkest level = %d, want 0", v)
	}
	if v := got.GrayAt(1, 0).Y; v != 255 {
		t.Errorf("lightest level = %d, want 255", v)
	}
}

func TestPreprocessFlatImageUnchanged(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 77
	}
	got := Preprocess(src)
	for i, v := range got.Pix {
		if v != 77 {
			t.Fatalf("Pix[%d] = %d, want 77", i, v)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"a\r\nb\rc", "a\nb\nc"},
		{"NF-e\n\f", "NF-e\n"},
		{"  keep  spacing ", "  keep  spacing "},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
