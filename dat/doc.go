// Package dat reads, builds and queries compiled Daedalus program images.
//
// An image is a symbol table followed by a flat bytecode stream. Symbols
// carry packed properties, their own values, and optional bindings to
// fields of native engine objects.
package dat
