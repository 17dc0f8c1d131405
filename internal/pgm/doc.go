// Package pgm owns the Portable Gray Map stream format.
//
// Ownership boundary:
// - header tokenizing (magic, width, height, max value, comment lines)
// - multi-frame binary payload extraction
// - per-frame P5 file encoding
//
// The package is synchronous and holds no process state; every call owns its
// buffers and may run alongside others as long as callers do not share a stream.
package pgm
