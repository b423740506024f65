// Package ptr provides helpers for optional values expressed as pointers.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }
