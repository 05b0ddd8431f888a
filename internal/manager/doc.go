// Package manager owns the single inference engine instance: bootstrapping
// it from downloaded artifacts, admitting one generation at a time, and
// projecting status for the HTTP layer.
package manager
