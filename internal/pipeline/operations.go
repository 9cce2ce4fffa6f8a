package pipeline

import (
	"context"
	"image"

	"pixelforge/internal/apperr"
	"pixelforge/internal/imaging"
	"pixelforge/internal/registry"
	"pixelforge/internal/session"
	"pixelforge/internal/tensor"
	"pixelforge/internal/tiling"
	"pixelforge/pkg/types"
)

const (
	segmentSide  = 320
	classifySide = 224
	inpaintSide  = 512
	topK         = 5
	esrganScale  = 4
)

// RemoveBackground writes a copy of the image whose alpha channel is the
// predicted foreground mask.
func (s *Service) RemoveBackground(ctx context.Context, path string) (string, error) {
	s.progress(types.StageLoadingModel, 10)
	if err := s.sessions.Ensure(ctx, registry.U2Net); err != nil {
		return "", err
	}
	s.progress(types.StagePreprocessing, 25)
	img, err := imaging.Load(path)
	if err != nil {
		return "", err
	}
	in := tensor.EncodeNormalized(imaging.Resize(img, segmentSide, segmentSide, imaging.HighQuality))

	s.progress(types.StageInferring, 50)
	out, err := s.run(ctx, registry.U2Net, in)
	if err != nil {
		return "", err
	}

	s.progress(types.StagePostprocessing, 80)
	mask, err := tensor.DecodeMask(out, segmentSide, segmentSide)
	if err != nil {
		return "", err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	alpha := imaging.ResizeGray(mask, w, h, imaging.HighQuality)
	res := image.NewNRGBA(img.Rect)
	copy(res.Pix, img.Pix)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			res.Pix[y*res.Stride+x*4+3] = alpha.Pix[y*alpha.Stride+x]
		}
	}
	return s.finish(res)
}

// Classify returns the five most likely ImageNet classes.
func (s *Service) Classify(ctx context.Context, path string) ([]types.Classification, error) {
	s.progress(types.StageLoadingModel, 10)
	if err := s.sessions.Ensure(ctx, registry.MobileNetV2); err != nil {
		return nil, err
	}
	s.progress(types.StagePreprocessing, 25)
	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	in := tensor.EncodeNormalized(imaging.Resize(img, classifySide, classifySide, imaging.HighQuality))

	s.progress(types.StageInferring, 50)
	out, err := s.run(ctx, registry.MobileNetV2, in)
	if err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, apperr.InferenceFailed("empty logits")
	}

	s.progress(types.StagePostprocessing, 90)
	res := tensor.TopK(tensor.Softmax(out.Data), s.labels, topK)
	s.progress(types.StageComplete, 100)
	return res, nil
}

// StyleTransfer renders the image in one of the style models and blends the
// result with the original at strength in [0,1]. Images with a side above
// the configured maximum are processed downscaled and resized back.
func (s *Service) StyleTransfer(ctx context.Context, path, styleID string, strength float32) (string, error) {
	if !s.reg.IsStyle(styleID) {
		return "", apperr.ModelNotFound("Unknown style model: %s", styleID)
	}
	s.progress(types.StageLoadingModel, 10)
	if err := s.sessions.Ensure(ctx, styleID); err != nil {
		return "", err
	}
	s.progress(types.StagePreprocessing, 25)
	img, err := imaging.Load(path)
	if err != nil {
		return "", err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	proc := img
	capped := w > s.styleMaxSide || h > s.styleMaxSide
	if capped {
		scale := float32(s.styleMaxSide) / float32(max(w, h))
		proc = imaging.Resize(img, max(1, int(float32(w)*scale)), max(1, int(float32(h)*scale)), imaging.HighQuality)
	}
	pw, ph := proc.Bounds().Dx(), proc.Bounds().Dy()

	s.progress(types.StageInferring, 50)
	out, err := s.run(ctx, styleID, tensor.EncodeRaw(proc))
	if err != nil {
		return "", err
	}

	s.progress(types.StagePostprocessing, 80)
	styled, err := decodeRGBSized(out, pw, ph, 1)
	if err != nil {
		return "", err
	}
	blended, err := tensor.Blend(proc, styled, strength)
	if err != nil {
		return "", err
	}
	if capped {
		blended = imaging.Resize(blended, w, h, imaging.HighQuality)
	}
	return s.finish(blended)
}

// decodeRGBSized decodes a 3-channel output to w×h. Graphs that pad their
// output are decoded at their own size and resampled.
func decodeRGBSized(out tensor.Tensor, w, h int, scale float32) (*image.NRGBA, error) {
	if _, c, oh, ow, err := out.NCHW(); err == nil && c >= 3 && (oh != h || ow != w) {
		img, err := tensor.DecodeRGB(out, ow, oh, scale)
		if err != nil {
			return nil, err
		}
		return imaging.Resize(img, w, h, imaging.HighQuality), nil
	}
	return tensor.DecodeRGB(out, w, h, scale)
}

// Upscale enlarges the image by 2 or 4 with the tiled super-resolution
// model. Any other scale is treated as 4.
func (s *Service) Upscale(ctx context.Context, path string, scale int) (string, error) {
	if scale != 2 && scale != 4 {
		scale = 4
	}
	s.progress(types.StageLoadingModel, 5)
	if err := s.sessions.Ensure(ctx, registry.RealESRGANx4); err != nil {
		return "", err
	}
	s.progress(types.StagePreprocessing, 10)
	img, err := imaging.Load(path)
	if err != nil {
		return "", err
	}

	var up *image.NRGBA
	err = s.sessions.With(ctx, registry.RealESRGANx4, func(e session.Engine) error {
		u := tiling.Upscaler{
			TileSize: s.tileSize,
			Overlap:  s.tileOverlap,
			Scale:    esrganScale,
			Progress: func(i, n int) {
				s.progress(types.StageInferring, int(float32(i)/float32(n)*75+15))
			},
		}
		var err error
		up, err = u.Run(img, func(in tensor.Tensor) (tensor.Tensor, error) {
			outs, err := e.Run([]tensor.Tensor{in})
			if err != nil {
				return tensor.Tensor{}, err
			}
			if len(outs) == 0 {
				return tensor.Tensor{}, apperr.InferenceFailed("no tile output")
			}
			return outs[0], nil
		})
		return err
	})
	if err != nil {
		return "", err
	}

	s.progress(types.StagePostprocessing, 92)
	if scale == 2 {
		up = imaging.Resize(up, img.Bounds().Dx()*2, img.Bounds().Dy()*2, imaging.HighQuality)
	}
	return s.finish(up)
}

// Inpaint fills the pixels where mask (one byte per pixel, row-major,
// maskW×maskH) is above 128 and keeps the original elsewhere.
func (s *Service) Inpaint(ctx context.Context, path string, mask []byte, maskW, maskH int) (string, error) {
	if !validMask(mask, maskW, maskH) {
		return "", apperr.General("invalid mask dimensions")
	}
	s.progress(types.StageLoadingModel, 10)
	if err := s.sessions.Ensure(ctx, registry.LaMa); err != nil {
		return "", err
	}
	s.progress(types.StagePreprocessing, 25)
	img, err := imaging.Load(path)
	if err != nil {
		return "", err
	}
	m := imaging.GrayFromBytes(mask, maskW, maskH)
	imgT := tensor.EncodeRaw(imaging.Resize(img, inpaintSide, inpaintSide, imaging.HighQuality))
	maskT := tensor.EncodeMask(imaging.ResizeGray(m, inpaintSide, inpaintSide, imaging.Nearest))

	s.progress(types.StageInferring, 50)
	out, err := s.run(ctx, registry.LaMa, imgT, maskT)
	if err != nil {
		return "", err
	}

	s.progress(types.StagePostprocessing, 80)
	filled, err := tensor.DecodeRGB(out, inpaintSide, inpaintSide, 1)
	if err != nil {
		return "", err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	filledFull := imaging.Resize(filled, w, h, imaging.HighQuality)
	maskFull := imaging.ResizeGray(m, w, h, imaging.Nearest)
	res := image.NewNRGBA(img.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := img
			if maskFull.Pix[y*maskFull.Stride+x] > 128 {
				src = filledFull
			}
			so := y*src.Stride + x*4
			do := y*res.Stride + x*4
			copy(res.Pix[do:do+3], src.Pix[so:so+3])
			res.Pix[do+3] = 255
		}
	}
	return s.finish(res)
}

// validMask reports whether mask holds exactly one byte per pixel of a
// non-empty w×h grid.
func validMask(mask []byte, w, h int) bool {
	return w > 0 && h > 0 && len(mask) == w*h
}

func (s *Service) finish(img image.Image) (string, error) {
	out, err := s.saver.Save(img)
	if err != nil {
		return "", err
	}
	s.progress(types.StageComplete, 100)
	s.log.Debug().Str("event", "output_written").Str("path", out).Msg("")
	return out, nil
}
