package session

import "pixelforge/internal/tensor"

// Engine is a loaded model graph. Run is called with the registry lock held,
// so implementations need not be safe for concurrent use.
type Engine interface {
	// Run feeds inputs in graph input order and returns outputs in graph
	// output order.
	Run(inputs []tensor.Tensor) ([]tensor.Tensor, error)
	// Close releases runtime resources.
	Close() error
}

// EngineFactory builds an engine from a verified model file.
type EngineFactory interface {
	New(path string) (Engine, error)
}

// FactoryFunc adapts a function to EngineFactory.
type FactoryFunc func(path string) (Engine, error)

func (f FactoryFunc) New(path string) (Engine, error) { return f(path) }

// PathResolver maps a model id to its local, already verified file.
type PathResolver interface {
	Path(modelID string) (string, error)
}
