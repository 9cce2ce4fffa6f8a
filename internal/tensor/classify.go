package tensor

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"pixelforge/pkg/types"
)

//go:embed imagenet_labels.txt
var imagenetLabels string

// ImageNetLabels returns the 1000 ImageNet-1k class names in index order.
func ImageNetLabels() []string {
	return strings.Split(strings.TrimRight(imagenetLabels, "\n"), "\n")
}

// Softmax returns exp(x-max)/sum. The input is not modified.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	hi := float32(math.Inf(-1))
	for _, v := range logits {
		hi = max(hi, v)
	}
	out := make([]float32, len(logits))
	var sum float32
	for i, v := range logits {
		e := float32(math.Exp(float64(v - hi)))
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// TopK returns the k most probable entries, most likely first. Labels out of
// range are reported as class_<index>.
func TopK(probs []float32, labels []string, k int) []types.Classification {
	vals := make([]float64, len(probs))
	for i, p := range probs {
		// negate for a descending order from an ascending sort
		vals[i] = -float64(p)
	}
	idx := make([]int, len(vals))
	floats.Argsort(vals, idx)
	k = min(k, len(idx))
	out := make([]types.Classification, 0, k)
	for _, i := range idx[:k] {
		label := fmt.Sprintf("class_%d", i)
		if i < len(labels) {
			label = labels[i]
		}
		out = append(out, types.Classification{Label: label, Confidence: probs[i]})
	}
	return out
}
