// Package session owns the loaded inference engines, one per model id.
// It is structured into small files by concern:
//
//   - registry.go: Registry type, lazy idempotent construction, With.
//   - engine.go: Engine and EngineFactory interfaces.
//   - metrics.go: Prometheus instruments for loads and inference time.
//   - onnx_ort.go: onnxruntime-backed factory (build tag `onnx`).
//   - onnx_stub.go: factory used when the tag is not set; it always fails.
//
// A single mutex guards every engine, so exactly one inference runs at a
// time across all models. A panic inside With poisons the registry and
// every later call fails.
package session
