package main

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/spf13/cobra"

	"pixelforge/internal/imaging"
)

func newRunCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "run", Short: "Run one operation on a local image", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("run requires an operation: remove-bg|classify|style|upscale|inpaint")
	}}

	// output runs fn and prints the resulting file path.
	output := func(fn func(a *app, cmd *cobra.Command, path string) (string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := fn(a, cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
	}

	removeBG := &cobra.Command{Use: "remove-bg <image>", Short: "Cut out the foreground (u2net)", Args: cobra.ExactArgs(1), RunE: output(func(a *app, cmd *cobra.Command, path string) (string, error) {
		return a.svc.RemoveBackground(cmd.Context(), path)
	})}

	classify := &cobra.Command{Use: "classify <image>", Short: "Top-5 ImageNet labels (mobilenetv2)", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		res, err := a.svc.Classify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, c := range res {
			fmt.Fprintf(cmd.OutOrStdout(), "%6.2f%%  %s\n", c.Confidence*100, c.Label)
		}
		return nil
	}}

	var styleID string
	var strength float32
	style := &cobra.Command{Use: "style <image>", Short: "Neural style transfer", Example: "  pixelforge run style --style style-mosaic --strength 0.8 cat.jpg", Args: cobra.ExactArgs(1), RunE: output(func(a *app, cmd *cobra.Command, path string) (string, error) {
		return a.svc.StyleTransfer(cmd.Context(), path, styleID, strength)
	})}
	style.Flags().StringVar(&styleID, "style", "style-mosaic", "Style model id")
	style.Flags().Float32Var(&strength, "strength", 1, "Blend strength in [0,1]")

	var scale int
	upscale := &cobra.Command{Use: "upscale <image>", Short: "Tiled super-resolution (realesrgan-x4)", Args: cobra.ExactArgs(1), RunE: output(func(a *app, cmd *cobra.Command, path string) (string, error) {
		return a.svc.Upscale(cmd.Context(), path, scale)
	})}
	upscale.Flags().IntVar(&scale, "scale", 4, "2 or 4")

	var maskPath string
	inpaint := &cobra.Command{Use: "inpaint <image>", Short: "Fill masked pixels (lama)", Example: "  pixelforge run inpaint --mask mask.png photo.jpg", Args: cobra.ExactArgs(1), RunE: output(func(a *app, cmd *cobra.Command, path string) (string, error) {
		mask, w, h, err := loadMask(maskPath)
		if err != nil {
			return "", err
		}
		return a.svc.Inpaint(cmd.Context(), path, mask, w, h)
	})}
	inpaint.Flags().StringVar(&maskPath, "mask", "", "Mask image; pixels brighter than 128 are filled")
	_ = inpaint.MarkFlagRequired("mask")

	cmd.AddCommand(removeBG, classify, style, upscale, inpaint)
	return cmd
}

// loadMask reads any supported image as an 8-bit luminance mask.
func loadMask(path string) ([]byte, int, int, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g.Pix, b.Dx(), b.Dy(), nil
}
