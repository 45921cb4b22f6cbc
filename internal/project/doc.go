// Package project locates and decodes reindent.toml, the per-tree
// configuration that supplies formatter options.
package project
