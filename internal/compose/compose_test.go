package compose_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"lumina/internal/compose"
	"lumina/internal/services"
	"lumina/internal/testsupport"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func TestCompositeOutputMatchesSourceDimensions(t *testing.T) {
	source := testsupport.PNGBytes(t, 64, 48, color.NRGBA{R: 255, A: 255})
	template := testsupport.PNGBytes(t, 8, 8, color.NRGBA{B: 255, A: 255})

	out, err := compose.Composite(source, template)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	img := decodePNG(t, out)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("output bounds = %v, want 64x48", img.Bounds())
	}
}

func TestCompositeOpaqueTemplateReplacesSource(t *testing.T) {
	source := testsupport.PNGBytes(t, 16, 16, color.NRGBA{R: 255, A: 255})
	template := testsupport.PNGBytes(t, 4, 4, color.NRGBA{B: 255, A: 255})

	out, err := compose.Composite(source, template)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	img := decodePNG(t, out)
	_, _, b, _ := img.At(8, 8).RGBA()
	if b>>8 != 255 {
		t.Errorf("center pixel blue = %d, want 255 (template on top)", b>>8)
	}
}

func TestCompositeTransparentTemplateRevealsSource(t *testing.T) {
	source := testsupport.PNGBytes(t, 16, 16, color.NRGBA{R: 200, A: 255})
	template := testsupport.PNGBytes(t, 16, 16, color.NRGBA{})

	out, err := compose.Composite(source, template)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	img := decodePNG(t, out)
	r, _, _, _ := img.At(4, 4).RGBA()
	if r>>8 != 200 {
		t.Errorf("pixel red = %d, want 200 (source visible)", r>>8)
	}
}

func TestCompositeRejectsBadInput(t *testing.T) {
	good := testsupport.PNGBytes(t, 4, 4, color.NRGBA{A: 255})

	if _, err := compose.Composite([]byte("not an image"), good); !errors.Is(err, services.ErrComposite) {
		t.Errorf("bad source err = %v, want ErrComposite", err)
	}
	if _, err := compose.Composite(good, []byte("not an image")); !errors.Is(err, services.ErrComposite) {
		t.Errorf("bad template err = %v, want ErrComposite", err)
	}
}
