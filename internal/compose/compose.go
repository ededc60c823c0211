// Package compose overlays a template image onto source images.
package compose

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"lumina/internal/services"
)

// OutputMimeType is the MIME type of every composited result.
const OutputMimeType = "image/png"

// Composite overlays template onto source and returns the encoded result.
//
// The template is resized to the source's exact dimensions (fill fit, aspect
// ratio not preserved), then alpha-composited over the source: transparent
// template regions reveal the source, opaque regions replace it. Output is
// always PNG at the source's native resolution. The watch configuration's
// scale value does not change the output geometry here.
func Composite(source, template []byte) ([]byte, error) {
	sourceImg, err := imaging.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, services.Wrap(services.ErrComposite, "compose", "decode source", "", err)
	}
	templateImg, err := imaging.Decode(bytes.NewReader(template))
	if err != nil {
		return nil, services.Wrap(services.ErrComposite, "compose", "decode template", "", err)
	}

	bounds := sourceImg.Bounds()
	resized := imaging.Resize(templateImg, bounds.Dx(), bounds.Dy(), imaging.Lanczos)
	output := imaging.Overlay(sourceImg, resized, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, output, imaging.PNG); err != nil {
		return nil, services.Wrap(services.ErrComposite, "compose", "encode output", "", err)
	}
	return buf.Bytes(), nil
}
