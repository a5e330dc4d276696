package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decode(t *testing.T, p *Photo) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img
}

func TestThumbnailJPEG(t *testing.T) {
	photo, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(createTestJPEG(100, 100)))
	if err != nil {
		t.Fatalf("Thumbnail JPEG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if len(photo.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestThumbnailPNGBecomesJPEG(t *testing.T) {
	photo, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(createTestPNG(100, 100, color.RGBA{0, 0, 255, 255})))
	if err != nil {
		t.Fatalf("Thumbnail PNG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	decode(t, photo)
}

func TestThumbnailDownscaleKeepsAspect(t *testing.T) {
	photo, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(createTestJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Thumbnail large image: %v", err)
	}

	b := decode(t, photo).Bounds()
	if b.Dx() != DefaultMaxDimension || b.Dy() != DefaultMaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", DefaultMaxDimension, DefaultMaxDimension/2, b.Dx(), b.Dy())
	}
	if photo.Width != b.Dx() || photo.Height != b.Dy() {
		t.Errorf("reported size %dx%d does not match %dx%d", photo.Width, photo.Height, b.Dx(), b.Dy())
	}
}

func TestThumbnailCustomDimension(t *testing.T) {
	photo, err := NewThumbnailer(64, 70).Thumbnail(bytes.NewReader(createTestJPEG(100, 200)))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if photo.Width != 32 || photo.Height != 64 {
		t.Errorf("expected 32x64, got %dx%d", photo.Width, photo.Height)
	}
}

func TestThumbnailSmallImageNotUpscaled(t *testing.T) {
	photo, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(createTestJPEG(50, 50)))
	if err != nil {
		t.Fatalf("Thumbnail small image: %v", err)
	}

	b := decode(t, photo).Bounds()
	if b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", b.Dx(), b.Dy())
	}
}

func TestThumbnailFlattensTransparency(t *testing.T) {
	photo, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(createTestPNG(20, 20, color.RGBA{})))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	r, g, b, _ := decode(t, photo).At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected transparent pixels to become white, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestThumbnailRejectsOtherFormats(t *testing.T) {
	for name, data := range map[string][]byte{
		"text": []byte("not an image"),
		"gif":  []byte("GIF89a..."),
	} {
		_, err := NewThumbnailer(0, 0).Thumbnail(bytes.NewReader(data))
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
	}
}
