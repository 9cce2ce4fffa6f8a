package types

// ModelDescriptor describes one downloadable model in the catalog.
type ModelDescriptor struct {
	// Stable identifier for the model.
	// example: u2net
	ID string `json:"id" yaml:"id" toml:"id" example:"u2net"`
	// Human-friendly name.
	// example: U²-Net Background Removal
	Name string `json:"name" yaml:"name" toml:"name" example:"U²-Net Background Removal"`
	// Short description shown next to the model.
	Description string `json:"description" yaml:"description" toml:"description"`
	// Source URL the weights are downloaded from.
	URL string `json:"url" yaml:"url" toml:"url"`
	// File name inside the models directory.
	// example: u2net.onnx
	Filename string `json:"filename" yaml:"filename" toml:"filename" example:"u2net.onnx"`
	// Expected size in bytes; used as the total when the server omits Content-Length.
	ExpectedSizeBytes uint64 `json:"size_bytes" yaml:"size_bytes" toml:"size_bytes"`
	// Optional lowercase hex SHA-256 of the file. Empty means existence is trusted.
	SHA256 string `json:"sha256,omitempty" yaml:"sha256" toml:"sha256"`
}

// HasHash reports whether a content hash is configured.
func (m ModelDescriptor) HasHash() bool { return m.SHA256 != "" }

// ModelStatus is the read-only installed view of a descriptor.
type ModelStatus struct {
	ID          string `json:"id" example:"u2net"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SizeBytes   uint64 `json:"size_bytes" example:"176000000"`
	Installed   bool   `json:"installed" example:"true"`
}

// Classification is one label/confidence pair of a top-k result.
type Classification struct {
	Label      string  `json:"label" example:"golden retriever"`
	Confidence float32 `json:"confidence" example:"0.87"`
}
