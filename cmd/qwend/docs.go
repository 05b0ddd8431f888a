package main

// General API documentation for swaggo. Run `swag init` to regenerate docs.
//
// @title           qwend API
// @version         1.0
// @description     HTTP API for single-model artifact loading and streaming text generation.
//
// @contact.name   qwend maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
