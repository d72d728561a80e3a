package main

// General API documentation for swaggo. Run `swag init -g cmd/adapterd/main.go` to regenerate.
//
// @title           adapterd API
// @version         1.0
// @description     HTTP API for adapter-aware LLM serving: generation plus runtime adapter switching.
//
// @contact.name   adapterd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
