//go:build onnx

package session

import (
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"pixelforge/internal/apperr"
	"pixelforge/internal/tensor"
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

func initRuntime(library string) error {
	runtimeOnce.Do(func() {
		if library != "" {
			ort.SetSharedLibraryPath(library)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// ShutdownRuntime releases the onnxruntime environment. Call after every
// engine is closed.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

type ortFactory struct {
	library string
	threads int
}

// NewORTFactory builds engines on onnxruntime with intraThreads intra-op
// threads and every graph optimisation enabled. library, when set, is the
// path of the onnxruntime shared library.
func NewORTFactory(library string, intraThreads int) EngineFactory {
	return ortFactory{library: library, threads: intraThreads}
}

func (f ortFactory) New(path string) (Engine, error) {
	if err := initRuntime(f.library); err != nil {
		return nil, apperr.InferenceFailed("onnxruntime init: %v", err)
	}
	ins, outs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, apperr.InferenceFailed("read model io: %v", err)
	}
	inNames := make([]string, len(ins))
	for i, in := range ins {
		inNames[i] = in.Name
	}
	outNames := make([]string, len(outs))
	for i, out := range outs {
		outNames[i] = out.Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, apperr.InferenceFailed("session options: %v", err)
	}
	defer opts.Destroy()
	if f.threads > 0 {
		if err := opts.SetIntraOpNumThreads(f.threads); err != nil {
			return nil, apperr.InferenceFailed("intra-op threads: %v", err)
		}
	}
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, apperr.InferenceFailed("optimisation level: %v", err)
	}

	sess, err := ort.NewDynamicAdvancedSession(path, inNames, outNames, opts)
	if err != nil {
		return nil, apperr.InferenceFailed("create session: %v", err)
	}
	return &ortEngine{sess: sess, inputs: inNames, outputs: outNames}, nil
}

type ortEngine struct {
	sess    *ort.DynamicAdvancedSession
	inputs  []string
	outputs []string
}

func (e *ortEngine) Run(inputs []tensor.Tensor) ([]tensor.Tensor, error) {
	if len(inputs) != len(e.inputs) {
		return nil, apperr.InferenceFailed("model takes %d inputs, got %d", len(e.inputs), len(inputs))
	}
	in := make([]ort.Value, len(inputs))
	for i, t := range inputs {
		v, err := ort.NewTensor(ort.NewShape(t.Shape...), t.Data)
		if err != nil {
			destroyAll(in[:i])
			return nil, apperr.InferenceFailed("input %s: %v", e.inputs[i], err)
		}
		in[i] = v
	}
	defer destroyAll(in)

	// nil outputs are allocated by the runtime and must be destroyed here.
	out := make([]ort.Value, len(e.outputs))
	if err := e.sess.Run(in, out); err != nil {
		return nil, apperr.InferenceFailed("%v", err)
	}
	defer destroyAll(out)

	res := make([]tensor.Tensor, len(out))
	for i, v := range out {
		ft, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, apperr.InferenceFailed("output %s is not float32", e.outputs[i])
		}
		data := make([]float32, len(ft.GetData()))
		copy(data, ft.GetData())
		shape := append([]int64(nil), ft.GetShape()...)
		res[i] = tensor.Tensor{Shape: shape, Data: data}
	}
	return res, nil
}

func (e *ortEngine) Close() error {
	if e.sess == nil {
		return nil
	}
	err := e.sess.Destroy()
	e.sess = nil
	return err
}

func destroyAll(vs []ort.Value) {
	for _, v := range vs {
		if v != nil {
			_ = v.Destroy()
		}
	}
}
