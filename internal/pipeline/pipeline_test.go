package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"pixelforge/internal/apperr"
	"pixelforge/internal/events"
	"pixelforge/internal/imaging"
	"pixelforge/internal/provision"
	"pixelforge/internal/registry"
	"pixelforge/internal/session"
	"pixelforge/internal/tensor"
	"pixelforge/pkg/types"
)

// runFunc is a fake model keyed by file name.
type runFunc func(in []tensor.Tensor) ([]tensor.Tensor, error)

type fakeEngine struct{ run runFunc }

func (e fakeEngine) Run(in []tensor.Tensor) ([]tensor.Tensor, error) { return e.run(in) }
func (e fakeEngine) Close() error                                   { return nil }

type fixture struct {
	svc  *Service
	pub  *events.MemoryPublisher
	prov *provision.Provisioner
	out  string
}

// newFixture installs placeholder files for every catalog model and routes
// each one to the fake in models (by id). Missing ids fail on Run.
func newFixture(t *testing.T, models map[string]runFunc, opts ...func(*Config)) *fixture {
	t.Helper()
	return newFixtureWithRegistry(t, registry.Default(), models, opts...)
}

func newFixtureWithRegistry(t *testing.T, reg *registry.Registry, models map[string]runFunc, opts ...func(*Config)) *fixture {
	t.Helper()
	dir := t.TempDir()
	byFile := make(map[string]runFunc)
	for _, m := range reg.Catalog() {
		if err := os.WriteFile(filepath.Join(dir, m.Filename), []byte("onnx"), 0o644); err != nil {
			t.Fatalf("write model: %v", err)
		}
		if fn, ok := models[m.ID]; ok {
			byFile[m.Filename] = fn
		}
	}
	pub := events.NewMemoryPublisher()
	prov := provision.New(provision.Config{Dir: dir, Registry: reg, Publisher: pub, Logger: zerolog.Nop()})
	factory := session.FactoryFunc(func(path string) (session.Engine, error) {
		fn, ok := byFile[filepath.Base(path)]
		if !ok {
			fn = func([]tensor.Tensor) ([]tensor.Tensor, error) { return nil, errors.New("no fake for " + path) }
		}
		return fakeEngine{run: fn}, nil
	})
	sessions := session.New(session.Config{Resolver: prov, Factory: factory, Publisher: pub, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = sessions.Close() })

	out := t.TempDir()
	cfg := Config{
		Provisioner: prov,
		Sessions:    sessions,
		Saver:       imaging.Saver{Dir: out},
		Publisher:   pub,
		Logger:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &fixture{svc: New(cfg), pub: pub, prov: prov, out: out}
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p
}

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func identity(in []tensor.Tensor) ([]tensor.Tensor, error) { return in[:1], nil }

func stages(evs []events.Event) []types.OperationProgress {
	var out []types.OperationProgress
	for _, e := range evs {
		if p, ok := e.Payload.(types.OperationProgress); ok {
			out = append(out, p)
		}
	}
	return out
}

func loadOutput(t *testing.T, f *fixture, path string) *image.NRGBA {
	t.Helper()
	if filepath.Dir(path) != f.out || !strings.HasPrefix(filepath.Base(path), imaging.OutputPrefix) || filepath.Ext(path) != ".png" {
		t.Fatalf("unexpected output path %q", path)
	}
	img, err := imaging.Load(path)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	return img
}

func TestClassifyTopFive(t *testing.T) {
	var gotShape []int64
	f := newFixture(t, map[string]runFunc{
		registry.MobileNetV2: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			gotShape = in[0].Shape
			logits := make([]float32, 1000)
			for i := range logits {
				logits[i] = -10
			}
			copy(logits, []float32{2.0, 1.0, 0.5, 0.25, 0.1})
			return []tensor.Tensor{{Shape: []int64{1, 1000}, Data: logits}}, nil
		},
	})
	res, err := f.svc.Classify(context.Background(), writePNG(t, uniform(64, 64, color.NRGBA{120, 80, 40, 255})))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3, 224, 224}, gotShape); diff != "" {
		t.Fatalf("input shape (-want +got):\n%s", diff)
	}
	var labels []string
	for i, c := range res {
		labels = append(labels, c.Label)
		if i > 0 && c.Confidence > res[i-1].Confidence {
			t.Fatalf("not descending at %d: %+v", i, res)
		}
	}
	want := []string{"tench", "goldfish", "great white shark", "tiger shark", "hammerhead"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}

	wantStages := []types.OperationProgress{
		{Stage: types.StageLoadingModel, Percent: 10},
		{Stage: types.StagePreprocessing, Percent: 25},
		{Stage: types.StageInferring, Percent: 50},
		{Stage: types.StagePostprocessing, Percent: 90},
		{Stage: types.StageComplete, Percent: 100},
	}
	if diff := cmp.Diff(wantStages, stages(f.pub.Named(types.EventOperationProgress))); diff != "" {
		t.Fatalf("progress (-want +got):\n%s", diff)
	}
}

func TestClassifyCustomLabels(t *testing.T) {
	f := newFixture(t, map[string]runFunc{
		registry.MobileNetV2: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			return []tensor.Tensor{{Shape: []int64{1, 2}, Data: []float32{0, 3}}}, nil
		},
	}, func(c *Config) { c.Labels = []string{"cat", "dog"} })
	res, err := f.svc.Classify(context.Background(), writePNG(t, uniform(8, 8, color.NRGBA{A: 255})))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(res) != 2 || res[0].Label != "dog" || res[1].Label != "cat" {
		t.Fatalf("got %+v", res)
	}
}

func TestModelNotDownloaded(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.Remove(filepath.Join(f.prov.Dir(), "u2net.onnx")); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.RemoveBackground(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255})))
	if !apperr.IsModelNotFound(err) {
		t.Fatalf("want ModelNotFound, got %v", err)
	}
}

func TestUnreadableInput(t *testing.T) {
	f := newFixture(t, map[string]runFunc{registry.MobileNetV2: identity})
	_, err := f.svc.Classify(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if !apperr.IsFileRead(err) {
		t.Fatalf("want FileRead, got %v", err)
	}
}

func TestEngineErrorIsInferenceFailed(t *testing.T) {
	f := newFixture(t, map[string]runFunc{
		registry.MobileNetV2: func([]tensor.Tensor) ([]tensor.Tensor, error) { return nil, errors.New("boom") },
	})
	_, err := f.svc.Classify(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255})))
	if !apperr.IsInferenceFailed(err) {
		t.Fatalf("want InferenceFailed, got %v", err)
	}
}

func TestRemoveBackgroundWritesAlpha(t *testing.T) {
	var gotShape []int64
	f := newFixture(t, map[string]runFunc{
		registry.U2Net: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			gotShape = in[0].Shape
			data := make([]float32, segmentSide*segmentSide)
			for y := 0; y < segmentSide; y++ {
				for x := 0; x < segmentSide/2; x++ {
					data[y*segmentSide+x] = 0.9
				}
			}
			return []tensor.Tensor{{Shape: []int64{1, 1, segmentSide, segmentSide}, Data: data}}, nil
		},
	})
	src := uniform(32, 16, color.NRGBA{200, 100, 50, 255})
	out, err := f.svc.RemoveBackground(context.Background(), writePNG(t, src))
	if err != nil {
		t.Fatalf("RemoveBackground: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3, segmentSide, segmentSide}, gotShape); diff != "" {
		t.Fatalf("input shape (-want +got):\n%s", diff)
	}
	img := loadOutput(t, f, out)
	if img.Bounds().Size() != src.Bounds().Size() {
		t.Fatalf("size %v", img.Bounds().Size())
	}
	if got := img.NRGBAAt(0, 8); got != (color.NRGBA{200, 100, 50, 255}) {
		t.Fatalf("foreground pixel %v", got)
	}
	if got := img.NRGBAAt(31, 8).A; got != 0 {
		t.Fatalf("background alpha %d", got)
	}
}

func TestStyleTransferUnknownStyle(t *testing.T) {
	f := newFixture(t, nil)
	for _, id := range []string{"u2net", "style-nope", ""} {
		_, err := f.svc.StyleTransfer(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255})), id, 1)
		if !apperr.IsModelNotFound(err) {
			t.Fatalf("%q: want ModelNotFound, got %v", id, err)
		}
		if !strings.Contains(err.Error(), "Unknown style model") {
			t.Fatalf("%q: message %q", id, err)
		}
	}
	if n := len(f.pub.Events()); n != 0 {
		t.Fatalf("rejected style published %d events", n)
	}
}

func TestStyleTransferBlend(t *testing.T) {
	// The fake paints every pixel 200 regardless of input.
	paint := func(in []tensor.Tensor) ([]tensor.Tensor, error) {
		data := make([]float32, len(in[0].Data))
		for i := range data {
			data[i] = 200
		}
		return []tensor.Tensor{{Shape: in[0].Shape, Data: data}}, nil
	}
	f := newFixture(t, map[string]runFunc{registry.StyleMosaic: paint})
	in := writePNG(t, uniform(6, 4, color.NRGBA{100, 100, 100, 255}))

	cases := []struct {
		strength float32
		want     uint8
	}{
		{0, 100},
		{0.5, 150},
		{1, 200},
		{7, 200},
		{-1, 100},
	}
	for _, c := range cases {
		out, err := f.svc.StyleTransfer(context.Background(), in, registry.StyleMosaic, c.strength)
		if err != nil {
			t.Fatalf("strength %v: %v", c.strength, err)
		}
		img := loadOutput(t, f, out)
		if got := img.NRGBAAt(3, 2); got != (color.NRGBA{c.want, c.want, c.want, 255}) {
			t.Fatalf("strength %v: got %v want %d", c.strength, got, c.want)
		}
	}
}

func TestStyleTransferCapsLongSide(t *testing.T) {
	var gotShape []int64
	f := newFixture(t, map[string]runFunc{
		registry.StyleCandy: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			gotShape = in[0].Shape
			return identity(in)
		},
	}, func(c *Config) { c.StyleMaxSide = 8 })

	out, err := f.svc.StyleTransfer(context.Background(), writePNG(t, uniform(16, 4, color.NRGBA{90, 60, 30, 255})), registry.StyleCandy, 1)
	if err != nil {
		t.Fatalf("StyleTransfer: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3, 2, 8}, gotShape); diff != "" {
		t.Fatalf("model input shape (-want +got):\n%s", diff)
	}
	if got := loadOutput(t, f, out).Bounds().Size(); got != image.Pt(16, 4) {
		t.Fatalf("output size %v", got)
	}
}

func TestStyleTransferCapKeepsThinSide(t *testing.T) {
	var gotShape []int64
	f := newFixture(t, map[string]runFunc{
		registry.StyleCandy: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			gotShape = in[0].Shape
			return identity(in)
		},
	}, func(c *Config) { c.StyleMaxSide = 8 })

	// 20x1 scaled to a long side of 8 would round the short side to 0.
	out, err := f.svc.StyleTransfer(context.Background(), writePNG(t, uniform(20, 1, color.NRGBA{90, 60, 30, 255})), registry.StyleCandy, 1)
	if err != nil {
		t.Fatalf("StyleTransfer: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3, 1, 8}, gotShape); diff != "" {
		t.Fatalf("model input shape (-want +got):\n%s", diff)
	}
	img := loadOutput(t, f, out)
	if got := img.Bounds().Size(); got != image.Pt(20, 1) {
		t.Fatalf("output size %v", got)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{90, 60, 30, 255}) {
		t.Fatalf("pixel %v", got)
	}
}

func TestStyleTransferResamplesOddOutput(t *testing.T) {
	// Some exported graphs pad the output by a few pixels.
	f := newFixture(t, map[string]runFunc{
		registry.StyleUdnie: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			return []tensor.Tensor{tensor.Zeros(1, 3, 8, 8)}, nil
		},
	})
	out, err := f.svc.StyleTransfer(context.Background(), writePNG(t, uniform(6, 6, color.NRGBA{50, 50, 50, 255})), registry.StyleUdnie, 1)
	if err != nil {
		t.Fatalf("StyleTransfer: %v", err)
	}
	img := loadOutput(t, f, out)
	if img.Bounds().Size() != image.Pt(6, 6) || img.NRGBAAt(2, 2) != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("got %v %v", img.Bounds(), img.NRGBAAt(2, 2))
	}
}

// nearest4x upsamples a [1,3,h,w] tile by 4 without filtering.
func nearest4x(in []tensor.Tensor) ([]tensor.Tensor, error) {
	_, _, h, w, err := in[0].NCHW()
	if err != nil {
		return nil, err
	}
	oh, ow := h*4, w*4
	data := make([]float32, 3*oh*ow)
	for c := 0; c < 3; c++ {
		for y := 0; y < oh; y++ {
			for x := 0; x < ow; x++ {
				data[c*oh*ow+y*ow+x] = in[0].Data[c*h*w+(y/4)*w+x/4]
			}
		}
	}
	return []tensor.Tensor{{Shape: []int64{1, 3, int64(oh), int64(ow)}, Data: data}}, nil
}

func TestUpscaleScales(t *testing.T) {
	f := newFixture(t, map[string]runFunc{registry.RealESRGANx4: nearest4x}, func(c *Config) {
		c.TileSize = 8
		c.TileOverlap = 2
	})
	in := writePNG(t, uniform(20, 12, color.NRGBA{10, 120, 240, 255}))

	cases := []struct {
		scale int
		want  image.Point
	}{
		{4, image.Pt(80, 48)},
		{2, image.Pt(40, 24)},
		{3, image.Pt(80, 48)},
		{0, image.Pt(80, 48)},
	}
	for _, c := range cases {
		out, err := f.svc.Upscale(context.Background(), in, c.scale)
		if err != nil {
			t.Fatalf("scale %d: %v", c.scale, err)
		}
		img := loadOutput(t, f, out)
		if img.Bounds().Size() != c.want {
			t.Fatalf("scale %d: size %v want %v", c.scale, img.Bounds().Size(), c.want)
		}
		if got := img.NRGBAAt(c.want.X/2, c.want.Y/2); got != (color.NRGBA{10, 120, 240, 255}) {
			t.Fatalf("scale %d: centre %v", c.scale, got)
		}
	}
}

func TestUpscaleProgress(t *testing.T) {
	f := newFixture(t, map[string]runFunc{registry.RealESRGANx4: nearest4x}, func(c *Config) {
		c.TileSize = 8
		c.TileOverlap = 0
	})
	if _, err := f.svc.Upscale(context.Background(), writePNG(t, uniform(16, 8, color.NRGBA{A: 255})), 4); err != nil {
		t.Fatalf("Upscale: %v", err)
	}
	want := []types.OperationProgress{
		{Stage: types.StageLoadingModel, Percent: 5},
		{Stage: types.StagePreprocessing, Percent: 10},
		{Stage: types.StageInferring, Percent: 15},
		{Stage: types.StageInferring, Percent: 52},
		{Stage: types.StagePostprocessing, Percent: 92},
		{Stage: types.StageComplete, Percent: 100},
	}
	if diff := cmp.Diff(want, stages(f.pub.Named(types.EventOperationProgress))); diff != "" {
		t.Fatalf("progress (-want +got):\n%s", diff)
	}
}

func TestUpscaleTileFailureAborts(t *testing.T) {
	calls := 0
	f := newFixture(t, map[string]runFunc{
		registry.RealESRGANx4: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("tile exploded")
			}
			return nearest4x(in)
		},
	}, func(c *Config) { c.TileSize = 4 })
	_, err := f.svc.Upscale(context.Background(), writePNG(t, uniform(12, 12, color.NRGBA{A: 255})), 4)
	if !apperr.IsInferenceFailed(err) {
		t.Fatalf("want InferenceFailed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
	entries, _ := os.ReadDir(f.out)
	if len(entries) != 0 {
		t.Fatalf("partial output written: %v", entries)
	}
}

func TestInpaintMaskDimensions(t *testing.T) {
	f := newFixture(t, map[string]runFunc{registry.LaMa: identity})
	in := writePNG(t, uniform(4, 4, color.NRGBA{A: 255}))
	for _, c := range []struct {
		mask []byte
		w, h int
	}{
		{make([]byte, 15), 4, 4},
		{make([]byte, 17), 4, 4},
		{nil, 0, 0},
	} {
		_, err := f.svc.Inpaint(context.Background(), in, c.mask, c.w, c.h)
		if !apperr.IsGeneral(err) || !strings.Contains(err.Error(), "invalid mask dimensions") {
			t.Fatalf("len %d %dx%d: got %v", len(c.mask), c.w, c.h, err)
		}
	}
	if n := len(f.pub.Events()); n != 0 {
		t.Fatalf("rejected mask published %d events", n)
	}

	// The mask is checked before the model, so a missing model does not hide it.
	if err := f.prov.Delete(registry.LaMa); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Inpaint(context.Background(), in, make([]byte, 3), 2, 2); !apperr.IsGeneral(err) {
		t.Fatalf("want General before ModelNotFound, got %v", err)
	}
}

func TestInpaintComposite(t *testing.T) {
	var gotShapes [][]int64
	f := newFixture(t, map[string]runFunc{
		registry.LaMa: func(in []tensor.Tensor) ([]tensor.Tensor, error) {
			for _, t := range in {
				gotShapes = append(gotShapes, t.Shape)
			}
			data := make([]float32, 3*inpaintSide*inpaintSide)
			for i := range data {
				data[i] = 200
			}
			return []tensor.Tensor{{Shape: []int64{1, 3, inpaintSide, inpaintSide}, Data: data}}, nil
		},
	})
	const w, h = 8, 8
	mask := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			mask[y*w+x] = 255
		}
		// Exactly 128 is not masked.
		mask[y*w+w/2] = 128
	}
	out, err := f.svc.Inpaint(context.Background(), writePNG(t, uniform(w, h, color.NRGBA{10, 20, 30, 255})), mask, w, h)
	if err != nil {
		t.Fatalf("Inpaint: %v", err)
	}
	want := [][]int64{{1, 3, inpaintSide, inpaintSide}, {1, 1, inpaintSide, inpaintSide}}
	if diff := cmp.Diff(want, gotShapes); diff != "" {
		t.Fatalf("input shapes (-want +got):\n%s", diff)
	}
	img := loadOutput(t, f, out)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := img.NRGBAAt(x, y)
			wantC := color.NRGBA{10, 20, 30, 255}
			if x < w/2 {
				wantC = color.NRGBA{200, 200, 200, 255}
			}
			if got != wantC {
				t.Fatalf("(%d,%d) = %v want %v", x, y, got, wantC)
			}
		}
	}
}

func TestDeleteModelUnloads(t *testing.T) {
	f := newFixture(t, map[string]runFunc{
		registry.MobileNetV2: func([]tensor.Tensor) ([]tensor.Tensor, error) {
			return []tensor.Tensor{{Shape: []int64{1, 2}, Data: []float32{1, 0}}}, nil
		},
	})
	if _, err := f.svc.Classify(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255}))); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if diff := cmp.Diff([]string{registry.MobileNetV2}, f.svc.LoadedModels()); diff != "" {
		t.Fatalf("loaded (-want +got):\n%s", diff)
	}
	if err := f.svc.DeleteModel(registry.MobileNetV2); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}
	if n := len(f.svc.LoadedModels()); n != 0 {
		t.Fatalf("still loaded: %v", f.svc.LoadedModels())
	}
	if err := f.svc.DeleteModel(registry.MobileNetV2); err != nil {
		t.Fatalf("second DeleteModel: %v", err)
	}
	st, err := f.svc.ModelsStatus()
	if err != nil {
		t.Fatalf("ModelsStatus: %v", err)
	}
	for _, s := range st {
		if s.Installed == (s.ID == registry.MobileNetV2) {
			t.Fatalf("status %+v", s)
		}
	}
}

func TestPullModelUnloadsReplacedEngine(t *testing.T) {
	body := []byte("fresh mobilenet weights")
	sum := sha256.Sum256(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	reg := registry.Default().WithOverrides(types.ModelDescriptor{
		ID:     registry.MobileNetV2,
		URL:    srv.URL + "/mobilenetv2.onnx",
		SHA256: hex.EncodeToString(sum[:]),
	})
	f := newFixtureWithRegistry(t, reg, map[string]runFunc{
		registry.MobileNetV2: func([]tensor.Tensor) ([]tensor.Tensor, error) {
			return []tensor.Tensor{{Shape: []int64{1, 2}, Data: []float32{1, 0}}}, nil
		},
	})
	// The placeholder on disk does not match the configured hash but still
	// loads, as a corrupted cache would.
	if _, err := f.svc.Classify(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255}))); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if n := len(f.svc.LoadedModels()); n != 1 {
		t.Fatalf("loaded %v", f.svc.LoadedModels())
	}
	if err := f.svc.DownloadModel(context.Background(), registry.MobileNetV2); err != nil {
		t.Fatalf("DownloadModel: %v", err)
	}
	if n := len(f.svc.LoadedModels()); n != 0 {
		t.Fatalf("stale engine still loaded: %v", f.svc.LoadedModels())
	}
	path, err := f.prov.Path(registry.MobileNetV2)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != string(body) {
		t.Fatalf("installed %q", got)
	}
	if len(f.pub.Named("session_unloaded")) != 1 {
		t.Fatalf("expected one session_unloaded event")
	}

	// A verified file is left alone and keeps its engine.
	if _, err := f.svc.Classify(context.Background(), writePNG(t, uniform(4, 4, color.NRGBA{A: 255}))); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if err := f.svc.DownloadModel(context.Background(), registry.MobileNetV2); err != nil {
		t.Fatalf("second DownloadModel: %v", err)
	}
	if n := len(f.svc.LoadedModels()); n != 1 {
		t.Fatalf("verified model was unloaded: %v", f.svc.LoadedModels())
	}
}

func TestStyleIDs(t *testing.T) {
	f := newFixture(t, nil)
	want := []string{registry.StyleCandy, registry.StyleMosaic, registry.StylePointism, registry.StyleRain, registry.StyleUdnie}
	if diff := cmp.Diff(want, f.svc.StyleIDs()); diff != "" {
		t.Fatalf("style ids (-want +got):\n%s", diff)
	}
}
