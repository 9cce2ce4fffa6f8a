package types

// ImageRequest names an input image on the local filesystem.
type ImageRequest struct {
	// Absolute path of the input image.
	// example: /home/user/Pictures/cat.jpg
	Path string `json:"path" example:"/home/user/Pictures/cat.jpg"`
}

// StyleTransferRequest is the body of POST /style-transfer.
type StyleTransferRequest struct {
	Path string `json:"path" example:"/home/user/Pictures/cat.jpg"`
	// One of the style model ids.
	// example: style-mosaic
	StyleID string `json:"style_id" example:"style-mosaic"`
	// Blend strength in [0,1]; out-of-range values are clamped.
	// example: 0.8
	Strength float32 `json:"strength" example:"0.8"`
}

// UpscaleRequest is the body of POST /upscale.
type UpscaleRequest struct {
	Path string `json:"path" example:"/home/user/Pictures/cat.jpg"`
	// 2 or 4; anything else is treated as 4.
	// example: 4
	Scale int `json:"scale" example:"4"`
}

// InpaintRequest is the body of POST /inpaint. Mask is one byte per pixel,
// row-major, base64 in JSON.
type InpaintRequest struct {
	Path       string `json:"path" example:"/home/user/Pictures/cat.jpg"`
	Mask       []byte `json:"mask"`
	MaskWidth  int    `json:"mask_width" example:"640"`
	MaskHeight int    `json:"mask_height" example:"480"`
}

// OutputResponse returns the path of a written result image.
type OutputResponse struct {
	// example: /tmp/pixelforge_3f0c....png
	Output string `json:"output" example:"/tmp/pixelforge_3f0c2b1e.png"`
}

// ClassifyResponse returns the top-5 predictions, most likely first.
type ClassifyResponse struct {
	Results []Classification `json:"results"`
}

// ModelsResponse wraps GET /models.
type ModelsResponse struct {
	Models []ModelStatus `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Stable error kind.
	// example: ModelNotFound
	Kind string `json:"kind" example:"ModelNotFound"`
	// Error message.
	// example: model not found: u2net
	Error string `json:"error" example:"model not found: u2net"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
