//go:build !onnx

package session

import "pixelforge/internal/apperr"

// NewORTFactory returns a factory that always fails: this binary was built
// without onnxruntime support. Rebuild with -tags onnx.
func NewORTFactory(library string, intraThreads int) EngineFactory {
	return FactoryFunc(func(path string) (Engine, error) {
		return nil, apperr.InferenceFailed("onnx runtime not built (rebuild with -tags onnx)")
	})
}

// ShutdownRuntime is a no-op without onnxruntime.
func ShutdownRuntime() error { return nil }
