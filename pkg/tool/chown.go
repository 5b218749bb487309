package tool

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔧 SystemChown invokes the system chown binary recursively.
type SystemChown struct {
	path string
	run  runCommandFunc
}

var _ Chown = (*SystemChown)(nil)

// 🏭 NewSystemChown resolves the chown binary from PATH.
func NewSystemChown() (*SystemChown, error) {
	path, err := exec.LookPath("chown")
	if err != nil {
		return nil, errors.Errorf("locating chown: %w", err)
	}
	return &SystemChown{path: path, run: runCombined}, nil
}

// Apply sets ownership on path and everything under it. The specifier follows
// chown's owner:group convention; an empty side is left unchanged.
func (c *SystemChown) Apply(ctx context.Context, path, owner, group string) error {
	if owner == "" && group == "" {
		return errors.New("owner and group are both empty")
	}

	spec := owner
	if group != "" {
		spec = owner + ":" + group
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("path", path).
		Str("spec", spec).
		Msg("running chown")

	out, err := c.run(ctx, c.path, "-R", spec, path)
	if err != nil {
		return errors.Errorf("chown %s %s: %s: %w", spec, path, strings.TrimSpace(string(out)), err)
	}

	return nil
}
