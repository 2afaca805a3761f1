//go:build !cgo

package treesitter

import "errors"

// ErrCGODisabled is returned by NewCGOBackend in builds without cgo.
var ErrCGODisabled = errors.New("tree-sitter backend is not available: build with CGO_ENABLED=1 or use the heuristic parser backend")

// NewCGOBackend returns ErrCGODisabled.
func NewCGOBackend() (Backend, error) {
	return nil, ErrCGODisabled
}
