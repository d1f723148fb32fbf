// Package pool provides pooled byte buffers for backward-search windows and
// dataset cache encoding.
package pool
