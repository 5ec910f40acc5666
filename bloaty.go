// Package bloaty provides an executable-image size and weight analyzer.
// It parses ELF, Mach-O, and PE binaries into a symbol/reference graph
// (package graph), computes dominators and weight propagation over that
// graph, and renders text, Graphviz, and SVG reports (package report). See
// package binfmt for container parsing and package store for the optional
// Neo4j export.
package bloaty

// Version is the semantic version of the bloaty tool.
const Version = "0.1.0-dev"
