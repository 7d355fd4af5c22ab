// Command cookbook renders recipes and cookbook volumes to PDF.
//
// Recipes are read from JSON or YAML files, or from the per-video artifact
// cache with --video. Settings come from ~/.config/cookbook/config.toml
// unless --config points elsewhere; `cookbook config init` writes a sample.
package main
