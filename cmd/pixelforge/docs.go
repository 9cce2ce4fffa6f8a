package main

// General API documentation for swaggo. Run `swag init -g cmd/pixelforge/docs.go` to regenerate docs.
//
// @title           pixelforge API
// @version         1.0
// @description     HTTP API for on-device image models: catalog, downloads and inference.
//
// @contact.name   pixelforge maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
