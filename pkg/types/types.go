package types

// Progress stages published while an operation runs.
const (
	StageLoadingModel   = "loading_model"
	StagePreprocessing  = "preprocessing"
	StageInferring      = "inferring"
	StagePostprocessing = "postprocessing"
	StageComplete       = "complete"
)

// Event names published on the progress sink.
const (
	EventOperationProgress     = "operation-progress"
	EventModelDownloadProgress = "model-download-progress"
	EventModelDownloadComplete = "model-download-complete"
)

// OperationProgress is the payload of operation-progress events.
type OperationProgress struct {
	Stage   string `json:"stage" example:"inferring"`
	Percent int    `json:"percent" example:"50"`
}

// DownloadProgress is the payload of model-download-progress events.
type DownloadProgress struct {
	ModelID         string `json:"model_id" example:"u2net"`
	Percent         int    `json:"percent" example:"42"`
	DownloadedBytes uint64 `json:"downloaded_bytes" example:"73920000"`
	TotalBytes      uint64 `json:"total_bytes" example:"176000000"`
}

// DownloadDone is the last line of a successful download stream.
type DownloadDone struct {
	ModelID string `json:"model_id" example:"u2net"`
	Done    bool   `json:"done" example:"true"`
}
