package treesitter

import (
	"fmt"
	"strings"
)

// BackendType names a backend implementation.
type BackendType string

const (
	// BackendAuto selects the best available backend.
	BackendAuto BackendType = "auto"

	// BackendCGO is smacker/go-tree-sitter.
	BackendCGO BackendType = "cgo"
)

// EnvVarBackend is the environment variable that selects the backend.
const EnvVarBackend = "GRADLEDEPS_TREESITTER_BACKEND"

// ParseBackendType validates a backend name. The empty string means auto.
func ParseBackendType(s string) (BackendType, error) {
	typ := BackendType(strings.ToLower(strings.TrimSpace(s)))
	switch typ {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendCGO:
		return typ, nil
	default:
		return "", fmt.Errorf("unknown tree-sitter backend %q: must be one of auto, cgo", s)
	}
}

// NewBackend creates a backend of the given type.
func NewBackend(typ BackendType) (Backend, error) {
	switch typ {
	case BackendCGO, BackendAuto, "":
		return NewCGOBackend()
	default:
		return nil, fmt.Errorf("unknown backend type: %s", typ)
	}
}

// Available reports whether this build can create a backend.
func Available() bool {
	b, err := NewBackend(BackendAuto)
	if err != nil {
		return false
	}
	_ = b.Close()
	return true
}
