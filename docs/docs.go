// Package docs holds the OpenAPI document served under /swagger when the
// server is built with -tags=swagger. Regenerate with `swag init -g cmd/pixelforge/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "pixelforge maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List catalog models with install state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/models/{id}": {
            "delete": {
                "tags": ["models"],
                "summary": "Delete a downloaded model and unload its session",
                "parameters": [{"type": "string", "description": "model id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/download": {
            "post": {
                "produces": ["application/x-ndjson"],
                "tags": ["models"],
                "summary": "Download and verify a model, streaming progress lines",
                "parameters": [{"type": "string", "description": "model id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "NDJSON stream of DownloadProgress, ending with DownloadDone", "schema": {"$ref": "#/definitions/types.DownloadProgress"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/remove-background": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Remove the background of an image",
                "parameters": [{"description": "input image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ImageRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OutputResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/classify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Top-5 ImageNet classification",
                "parameters": [{"description": "input image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ImageRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ClassifyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/style-transfer": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Apply a style model blended at the given strength",
                "parameters": [{"description": "input image and style", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.StyleTransferRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OutputResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/upscale": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Tiled 2x or 4x super-resolution",
                "parameters": [{"description": "input image and scale", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpscaleRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OutputResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/inpaint": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Fill the masked region of an image",
                "parameters": [{"description": "input image and mask", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.InpaintRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OutputResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {"tags": ["ops"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}
        },
        "/readyz": {
            "get": {"tags": ["ops"], "summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "unavailable"}}}
        }
    },
    "definitions": {
        "types.ImageRequest": {
            "type": "object",
            "properties": {"path": {"type": "string", "example": "/home/user/Pictures/cat.jpg"}}
        },
        "types.StyleTransferRequest": {
            "type": "object",
            "properties": {
                "path": {"type": "string", "example": "/home/user/Pictures/cat.jpg"},
                "style_id": {"type": "string", "example": "style-mosaic"},
                "strength": {"type": "number", "example": 0.8}
            }
        },
        "types.UpscaleRequest": {
            "type": "object",
            "properties": {
                "path": {"type": "string", "example": "/home/user/Pictures/cat.jpg"},
                "scale": {"type": "integer", "example": 4}
            }
        },
        "types.InpaintRequest": {
            "type": "object",
            "properties": {
                "path": {"type": "string", "example": "/home/user/Pictures/cat.jpg"},
                "mask": {"type": "string", "format": "byte"},
                "mask_width": {"type": "integer", "example": 640},
                "mask_height": {"type": "integer", "example": 480}
            }
        },
        "types.OutputResponse": {
            "type": "object",
            "properties": {"output": {"type": "string", "example": "/tmp/pixelforge_3f0c2b1e.png"}}
        },
        "types.Classification": {
            "type": "object",
            "properties": {
                "label": {"type": "string", "example": "golden retriever"},
                "confidence": {"type": "number", "example": 0.87}
            }
        },
        "types.ClassifyResponse": {
            "type": "object",
            "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/types.Classification"}}}
        },
        "types.ModelStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "u2net"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "size_bytes": {"type": "integer", "example": 176000000},
                "installed": {"type": "boolean", "example": true}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelStatus"}}}
        },
        "types.DownloadProgress": {
            "type": "object",
            "properties": {
                "model_id": {"type": "string", "example": "u2net"},
                "percent": {"type": "integer", "example": 42},
                "downloaded_bytes": {"type": "integer", "example": 73920000},
                "total_bytes": {"type": "integer", "example": 176000000}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "ModelNotFound"},
                "error": {"type": "string", "example": "model not found: u2net"},
                "code": {"type": "integer", "example": 404}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "pixelforge API",
	Description:      "HTTP API for on-device image models: catalog, downloads and inference.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
