// Package tiling runs a fixed-scale super-resolution model over an image of
// any size by splitting it into overlapping tiles and blending the scaled
// results back together.
package tiling

import (
	"image"
	"math"

	"pixelforge/internal/apperr"
	"pixelforge/internal/tensor"
)

// Tile is a rectangle in source pixels.
type Tile struct {
	X, Y, W, H int
}

// Rect returns the tile as an image.Rectangle.
func (t Tile) Rect() image.Rectangle { return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H) }

func sat(a, b int) int { return max(a-b, 0) }

// ComputeTiles splits a w×h image into tiles of at most size×size pixels
// that overlap by overlap pixels. The last row and column are pulled back so
// they end exactly on the far edge. Tiles are returned row-major.
func ComputeTiles(w, h, size, overlap int) []Tile {
	if w <= 0 || h <= 0 || size <= 0 {
		return nil
	}
	step := max(sat(size, overlap), 1)
	var tiles []Tile
	y := 0
	for {
		th := min(size, sat(h, y))
		x := 0
		for {
			tw := min(size, sat(w, x))
			tiles = append(tiles, Tile{X: x, Y: y, W: tw, H: th})
			if x+tw >= w {
				break
			}
			x += step
			if x+size > w {
				x = sat(w, size)
			}
		}
		if y+th >= h {
			break
		}
		y += step
		if y+size > h {
			y = sat(h, size)
		}
	}
	return tiles
}

// Weight is the blend weight along one axis for position pos inside a scaled
// tile of length size, where o is the scaled overlap.
func Weight(pos, size, o int) float32 {
	switch {
	case size <= 2*o:
		return 1
	case pos < o:
		return float32(pos) / float32(o)
	case pos >= size-o:
		return float32(size-1-pos) / float32(o)
	default:
		return 1
	}
}

// MinWeight keeps corner pixels from vanishing when both ramps reach zero.
const MinWeight = 0.001

// Accumulator holds the weighted sum and total weight per output sample.
type Accumulator struct {
	W, H   int
	sum    []float32
	weight []float32
}

// NewAccumulator allocates buffers for a w×h RGB output.
func NewAccumulator(w, h int) *Accumulator {
	n := w * h * 3
	return &Accumulator{W: w, H: h, sum: make([]float32, n), weight: make([]float32, n)}
}

// Add blends a CHW [3,th,tw] tile output with values in [0,1] at output
// offset (ox,oy). Samples outside the buffer are skipped.
func (a *Accumulator) Add(ox, oy, tw, th int, data []float32, overlap int) {
	plane := tw * th
	for y := 0; y < th; y++ {
		yy := oy + y
		if yy >= a.H {
			break
		}
		wy := Weight(y, th, overlap)
		for x := 0; x < tw; x++ {
			xx := ox + x
			if xx >= a.W {
				break
			}
			w := max(Weight(x, tw, overlap)*wy, MinWeight)
			idx := (yy*a.W + xx) * 3
			for c := 0; c < 3; c++ {
				v := min(max(data[c*plane+y*tw+x], 0), 1) * 255
				a.sum[idx+c] += v * w
				a.weight[idx+c] += w
			}
		}
	}
}

// Finalize returns round(sum/weight) per sample, 0 where nothing was added.
func (a *Accumulator) Finalize() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, a.W, a.H))
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			idx := (y*a.W + x) * 3
			o := y*img.Stride + x*4
			for c := 0; c < 3; c++ {
				if wt := a.weight[idx+c]; wt > 0 {
					img.Pix[o+c] = uint8(min(math.Round(float64(a.sum[idx+c]/wt)), 255))
				}
			}
			img.Pix[o+3] = 255
		}
	}
	return img
}

// RunFunc executes the model on one [1,3,h,w] tile tensor.
type RunFunc func(in tensor.Tensor) (tensor.Tensor, error)

// Upscaler drives a model with a fixed native Scale over tiles.
type Upscaler struct {
	TileSize int
	Overlap  int
	Scale    int
	// Progress, when set, is called before each tile with its index.
	Progress func(idx, total int)
}

// Run upscales img by u.Scale. Any tile failure aborts the whole call.
func (u Upscaler) Run(img *image.NRGBA, run RunFunc) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tiles := ComputeTiles(w, h, u.TileSize, u.Overlap)
	if len(tiles) == 0 {
		return nil, apperr.InferenceFailed("empty image")
	}
	s := u.Scale
	acc := NewAccumulator(w*s, h*s)
	for i, t := range tiles {
		if u.Progress != nil {
			u.Progress(i, len(tiles))
		}
		out, err := run(tensor.EncodeUnitRegion(img, t.Rect().Add(b.Min)))
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInferenceFailed, err)
		}
		tw, th := t.W*s, t.H*s
		if err := checkTileOutput(out, tw, th); err != nil {
			return nil, err
		}
		acc.Add(t.X*s, t.Y*s, tw, th, out.Data, u.Overlap*s)
	}
	return acc.Finalize(), nil
}

func checkTileOutput(out tensor.Tensor, w, h int) error {
	_, c, oh, ow, err := out.NCHW()
	if err != nil {
		return err
	}
	if c != 3 || oh != h || ow != w || len(out.Data) < 3*w*h {
		return apperr.InferenceFailed("tile output shape %v, want [1 3 %d %d]", out.Shape, h, w)
	}
	return nil
}
