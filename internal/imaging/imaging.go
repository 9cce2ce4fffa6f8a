// Package imaging loads, resamples and writes the images the pipeline works
// on. Pixels are handled as non-premultiplied *image.NRGBA with the origin at
// (0,0); masks as *image.Gray.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixelforge/internal/apperr"
)

// Filter selects the resampling kernel.
type Filter int

const (
	// HighQuality is a Catmull-Rom cubic, used for colour data.
	HighQuality Filter = iota
	// Nearest keeps hard edges, used for masks.
	Nearest
)

func (f Filter) scaler() xdraw.Scaler {
	if f == Nearest {
		return xdraw.NearestNeighbor
	}
	return xdraw.CatmullRom
}

// Load reads and decodes the image at path.
func Load(path string) (*image.NRGBA, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindFileRead, Msg: path, Err: err}
	}
	return Decode(bytes.NewReader(b))
}

// Decode decodes any registered format (png, jpeg, gif, webp, bmp, tiff).
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &apperr.Error{Kind: apperr.KindUnsupportedFormat, Msg: "unrecognised image format", Err: err}
		}
		return nil, apperr.Wrap(apperr.KindImageDecode, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts img to *image.NRGBA anchored at (0,0). An NRGBA already
// anchored at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Resize scales img to w×h.
func Resize(img image.Image, w, h int, f Filter) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	f.scaler().Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ResizeGray scales a single-channel image to w×h.
func ResizeGray(img *image.Gray, w, h int, f Filter) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	f.scaler().Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// GrayFromBytes wraps a row-major w×h byte mask without copying.
func GrayFromBytes(pix []byte, w, h int) *image.Gray {
	return &image.Gray{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
}
