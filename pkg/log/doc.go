// Package log defines the structured logging interface used throughout the
// module, plus a zerolog-backed adapter and a no-op implementation.
//
// The delivery engine and transport adapter accept any Logger, so embedders
// can plug in their own logging backend; the CLI wires the zerolog adapter.
package log
