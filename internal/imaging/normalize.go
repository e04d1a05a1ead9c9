// Package imaging prepares RC scans for text recognition.
//
// The only transform applied is a luminance greyscale: it removes the chroma
// noise and colour-stamp interference typical of registration certificates
// without risking the artefacts that deskewing or binarization can introduce
// on phone-camera captures.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/garagehub/rc-intake/internal/common"
)

// Normalize decodes an image and converts every pixel to greyscale using
// Y = 0.30*R + 0.59*G + 0.11*B, written into all three colour channels with
// alpha unchanged. The result is PNG-encoded at the same dimensions.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}

	out := Grayscale(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode normalized image: %w", err)
	}
	return buf.Bytes(), nil
}

// Grayscale returns a same-dimensions RGBA copy of src with R=G=B=Y per pixel.
func Grayscale(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			lum := uint8((30*uint32(c.R) + 59*uint32(c.G) + 11*uint32(c.B)) / 100)
			dst.SetNRGBA(x, y, color.NRGBA{R: lum, G: lum, B: lum, A: c.A})
		}
	}
	return dst
}

// NormalizeDataURI accepts a base64 image data URI (the capture format the
// review UI uploads) and returns a PNG data URI of the greyscale image.
func NormalizeDataURI(uri string) (string, error) {
	data, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}
	out, err := Normalize(data)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(out), nil
}

// DecodeDataURI extracts the raw bytes from a "data:<mime>;base64,..." URI.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%w: not a data URI", common.ErrImageDecode)
	}
	idx := strings.Index(uri, ",")
	if idx < 0 || !strings.Contains(uri[:idx], ";base64") {
		return nil, fmt.Errorf("%w: data URI is not base64-encoded", common.ErrImageDecode)
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}
	return data, nil
}
