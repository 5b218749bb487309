package tool

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Mirror performs recursive copies between directory roots. Implementations
// must tolerate a partially written target: re-running Sync finishes an
// interrupted transfer without re-copying unchanged content.
type Mirror interface {
	// Sync copies the contents of source into target with the given options.
	Sync(ctx context.Context, source, target string, options []string) error
}

// Chown changes ownership of a path tree.
type Chown interface {
	// Apply recursively sets owner and group on path. Either identity may be
	// empty, leaving that side unchanged.
	Apply(ctx context.Context, path, owner, group string) error
}

// MirrorFactory builds a configured Mirror.
type MirrorFactory func() (Mirror, error)

var mirrors = map[string]MirrorFactory{}

// RegisterMirror makes a mirror implementation available by name.
func RegisterMirror(name string, factory MirrorFactory) {
	mirrors[name] = factory
}

// NewMirror builds the mirror registered under name.
func NewMirror(name string) (Mirror, error) {
	factory, ok := mirrors[name]
	if !ok {
		options := []string{}
		for k := range mirrors {
			options = append(options, k)
		}
		return nil, errors.Errorf("mirror %s not found, options: %s", name, strings.Join(options, ", "))
	}
	return factory()
}
