// Package tensor converts images to the float32 NCHW tensors the catalog
// models consume and turns their outputs back into pixels.
package tensor

import (
	"image"
	"math"

	"pixelforge/internal/apperr"
)

// Tensor is a dense float32 array in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// New validates that data holds exactly the number of elements shape implies.
func New(shape []int64, data []float32) (Tensor, error) {
	n, err := elements(shape)
	if err != nil {
		return Tensor{}, err
	}
	if int64(len(data)) != n {
		return Tensor{}, apperr.InferenceFailed("tensor shape %v needs %d values, got %d", shape, n, len(data))
	}
	return Tensor{Shape: shape, Data: data}, nil
}

// Zeros allocates a tensor of the given shape.
func Zeros(shape ...int64) Tensor {
	n, err := elements(shape)
	if err != nil {
		panic(err)
	}
	return Tensor{Shape: shape, Data: make([]float32, n)}
}

func elements(shape []int64) (int64, error) {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return 0, apperr.InferenceFailed("negative dimension in shape %v", shape)
		}
		n *= d
	}
	return n, nil
}

// NCHW returns the dimensions of a 4-D tensor.
func (t Tensor) NCHW() (n, c, h, w int, err error) {
	if len(t.Shape) != 4 {
		return 0, 0, 0, 0, apperr.InferenceFailed("expected 4-D tensor, got shape %v", t.Shape)
	}
	return int(t.Shape[0]), int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3]), nil
}

// ImageNet channel statistics used by the segmentation and classification
// models.
var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// encode writes f(pixel byte, channel) for every RGB sample of img into a
// [1,3,h,w] tensor. Alpha is ignored.
func encode(img *image.NRGBA, f func(v uint8, c int) float32) Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := Zeros(1, 3, int64(h), int64(w))
	plane := w * h
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				t.Data[c*plane+y*w+x] = f(row[x*4+c], c)
			}
		}
	}
	return t
}

// EncodeNormalized maps pixels to (p/255 - mean[c]) / std[c].
func EncodeNormalized(img *image.NRGBA) Tensor {
	return encode(img, func(v uint8, c int) float32 {
		return (float32(v)/255 - ImageNetMean[c]) / ImageNetStd[c]
	})
}

// EncodeRaw keeps pixels in [0,255].
func EncodeRaw(img *image.NRGBA) Tensor {
	return encode(img, func(v uint8, _ int) float32 { return float32(v) })
}

// EncodeUnit maps pixels to [0,1].
func EncodeUnit(img *image.NRGBA) Tensor {
	return encode(img, func(v uint8, _ int) float32 { return float32(v) / 255 })
}

// EncodeUnitRegion encodes the sub-rectangle r of img to [0,1].
func EncodeUnitRegion(img *image.NRGBA, r image.Rectangle) Tensor {
	return EncodeUnit(img.SubImage(r).(*image.NRGBA))
}

// EncodeMask produces a [1,1,h,w] tensor holding 1 where the mask value is
// strictly greater than 128 and 0 elsewhere.
func EncodeMask(m *image.Gray) Tensor {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	t := Zeros(1, 1, int64(h), int64(w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*m.Stride+x] > 128 {
				t.Data[y*w+x] = 1
			}
		}
	}
	return t
}

// Denormalize inverts EncodeNormalized, rounding back to bytes.
func Denormalize(t Tensor) (*image.NRGBA, error) {
	_, c, h, w, err := t.NCHW()
	if err != nil {
		return nil, err
	}
	if c != 3 || len(t.Data) < 3*h*w {
		return nil, apperr.InferenceFailed("expected 3 channels, got shape %v", t.Shape)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*img.Stride + x*4
			for ch := 0; ch < 3; ch++ {
				v := (t.Data[ch*plane+y*w+x]*ImageNetStd[ch] + ImageNetMean[ch]) * 255
				img.Pix[o+ch] = uint8(clamp(float32(math.Round(float64(v))), 0, 255))
			}
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}

// DecodeMask min-max normalises the first w*h values of t into an 8-bit
// mask. A constant output maps to all zeros.
func DecodeMask(t Tensor, w, h int) (*image.Gray, error) {
	n := w * h
	if len(t.Data) < n {
		return nil, apperr.InferenceFailed("mask output has %d values, need %d", len(t.Data), n)
	}
	vals := t.Data[:n]
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := max(hi-lo, epsilon)
	m := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range vals {
		m.Pix[i] = uint8(clamp((v-lo)/rng*255, 0, 255))
	}
	return m, nil
}

// epsilon is the float32 machine epsilon.
const epsilon = float32(1.1920929e-07)

// DecodeRGB reads a [1,3,h,w] output, multiplies by scale, clamps to
// [0,255] and truncates to bytes. Use scale 1 for [0,255] models and 255 for
// [0,1] models.
func DecodeRGB(t Tensor, w, h int, scale float32) (*image.NRGBA, error) {
	plane := w * h
	if len(t.Data) < 3*plane {
		return nil, apperr.InferenceFailed("rgb output has %d values, need %d", len(t.Data), 3*plane)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*img.Stride + x*4
			for c := 0; c < 3; c++ {
				img.Pix[o+c] = uint8(clamp(t.Data[c*plane+y*w+x]*scale, 0, 255))
			}
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}

// Blend returns round(orig*(1-s) + styled*s) per channel with s clamped to
// [0,1]. Both images must have the same size. The result is opaque.
func Blend(orig, styled *image.NRGBA, s float32) (*image.NRGBA, error) {
	if orig.Bounds().Size() != styled.Bounds().Size() {
		return nil, apperr.InferenceFailed("blend size mismatch: %v vs %v", orig.Bounds().Size(), styled.Bounds().Size())
	}
	s = clamp(s, 0, 1)
	b := orig.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			oi := y*orig.Stride + x*4
			si := y*styled.Stride + x*4
			di := y*out.Stride + x*4
			for c := 0; c < 3; c++ {
				v := float32(orig.Pix[oi+c])*(1-s) + float32(styled.Pix[si+c])*s
				out.Pix[di+c] = uint8(clamp(float32(math.Round(float64(v))), 0, 255))
			}
			out.Pix[di+3] = 255
		}
	}
	return out, nil
}

func clamp(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	return max(lo, min(v, hi))
}
