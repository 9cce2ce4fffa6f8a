// Package registry holds the static catalog of models pixelforge knows how
// to download and run. Entries are immutable values identified by ID.
package registry

import (
	"sort"

	"pixelforge/pkg/types"
)

const styleBaseURL = "https://github.com/onnx/models/raw/main/validated/vision/style_transfer/fast_neural_style/model/"

// Well-known model ids used by the pipeline.
const (
	U2Net         = "u2net"
	RealESRGANx4  = "realesrgan-x4"
	LaMa          = "lama"
	MobileNetV2   = "mobilenetv2"
	StyleMosaic   = "style-mosaic"
	StyleCandy    = "style-candy"
	StyleRain     = "style-rain-princess"
	StyleUdnie    = "style-udnie"
	StylePointism = "style-pointilism"
)

var builtin = []types.ModelDescriptor{
	{
		ID:                U2Net,
		Name:              "U²-Net Background Removal",
		Description:       "Segments foreground objects from background",
		URL:               "https://huggingface.co/tomjackson2023/rembg/resolve/main/u2net.onnx",
		Filename:          "u2net.onnx",
		ExpectedSizeBytes: 176_000_000,
		SHA256:            "8d10d2f3bb75ae3b6d527c77944fc5e7dcd94b29809d47a739a7a728a912b491",
	},
	{
		ID:                RealESRGANx4,
		Name:              "Real-ESRGAN x4",
		Description:       "AI image upscaling (4x resolution)",
		URL:               "https://huggingface.co/AXERA-TECH/Real-ESRGAN/resolve/main/onnx/realesrgan-x4.onnx",
		Filename:          "realesrgan-x4.onnx",
		ExpectedSizeBytes: 67_000_000,
	},
	{
		ID:                LaMa,
		Name:              "LaMa Inpainting",
		Description:       "AI object removal and inpainting",
		URL:               "https://huggingface.co/Carve/LaMa-ONNX/resolve/main/lama_fp32.onnx",
		Filename:          "lama_fp32.onnx",
		ExpectedSizeBytes: 208_000_000,
	},
	style(StyleMosaic, "Mosaic", "mosaic-9.onnx"),
	style(StyleCandy, "Candy", "candy-9.onnx"),
	style(StyleRain, "Rain Princess", "rain-princess-9.onnx"),
	style(StyleUdnie, "Udnie", "udnie-9.onnx"),
	style(StylePointism, "Pointilism", "pointilism-9.onnx"),
	{
		ID:                MobileNetV2,
		Name:              "MobileNetV2",
		Description:       "Image classification (1000 categories)",
		URL:               "https://huggingface.co/onnxmodelzoo/mobilenetv2-12/resolve/main/model/mobilenetv2-12.onnx",
		Filename:          "mobilenetv2-12.onnx",
		ExpectedSizeBytes: 13_300_000,
	},
}

var styleIDs = []string{StyleMosaic, StyleCandy, StyleRain, StyleUdnie, StylePointism}

func style(id, title, file string) types.ModelDescriptor {
	return types.ModelDescriptor{
		ID:                id,
		Name:              title + " Style",
		Description:       title + " artistic style transfer",
		URL:               styleBaseURL + file,
		Filename:          file,
		ExpectedSizeBytes: 6_600_000,
	}
}

// Registry is a read-only, ordered set of model descriptors.
type Registry struct {
	models []types.ModelDescriptor
	byID   map[string]int
}

// New builds a registry from models. Later entries with a duplicate ID
// replace earlier ones in place.
func New(models ...types.ModelDescriptor) *Registry {
	r := &Registry{byID: make(map[string]int, len(models))}
	for _, m := range models {
		if i, ok := r.byID[m.ID]; ok {
			r.models[i] = m
			continue
		}
		r.byID[m.ID] = len(r.models)
		r.models = append(r.models, m)
	}
	return r
}

// Default returns the built-in catalog.
func Default() *Registry { return New(builtin...) }

// WithOverrides returns a copy of r where each override replaces the fields
// it sets on the entry with the same ID. Unknown ids are appended.
func (r *Registry) WithOverrides(overrides ...types.ModelDescriptor) *Registry {
	out := New(r.models...)
	for _, o := range overrides {
		i, ok := out.byID[o.ID]
		if !ok {
			out.byID[o.ID] = len(out.models)
			out.models = append(out.models, o)
			continue
		}
		m := out.models[i]
		if o.Name != "" {
			m.Name = o.Name
		}
		if o.Description != "" {
			m.Description = o.Description
		}
		if o.URL != "" {
			m.URL = o.URL
		}
		if o.Filename != "" {
			m.Filename = o.Filename
		}
		if o.ExpectedSizeBytes != 0 {
			m.ExpectedSizeBytes = o.ExpectedSizeBytes
		}
		if o.SHA256 != "" {
			m.SHA256 = o.SHA256
		}
		out.models[i] = m
	}
	return out
}

// Catalog returns a copy of all descriptors in catalog order.
func (r *Registry) Catalog() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Find looks up a descriptor by id.
func (r *Registry) Find(id string) (types.ModelDescriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return types.ModelDescriptor{}, false
	}
	return r.models[i], true
}

// StyleIDs returns the ids accepted by style transfer that are present in r,
// sorted.
func (r *Registry) StyleIDs() []string {
	var out []string
	for _, id := range styleIDs {
		if _, ok := r.byID[id]; ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// IsStyle reports whether id names a style transfer model in r.
func (r *Registry) IsStyle(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	for _, s := range styleIDs {
		if s == id {
			return true
		}
	}
	return false
}
