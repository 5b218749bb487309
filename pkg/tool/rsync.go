package tool

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Rsync invokes the system rsync binary. The step protocol relies on
// rsync's recursive, resumable transfers and on attribute preservation under
// archive options.
type Rsync struct {
	path string
	run  runCommandFunc
}

var _ Mirror = (*Rsync)(nil)

func init() {
	RegisterMirror("rsync", func() (Mirror, error) {
		return NewRsync()
	})
}

// 🏭 NewRsync resolves the rsync binary from PATH. A missing binary is an
// environment error, reported here rather than per step.
func NewRsync() (*Rsync, error) {
	path, err := exec.LookPath("rsync")
	if err != nil {
		return nil, errors.Errorf("locating rsync: %w", err)
	}
	return &Rsync{path: path, run: runCombined}, nil
}

// Sync copies the contents of source into target. Both paths get trailing
// separators so rsync merges contents instead of nesting source under target.
func (r *Rsync) Sync(ctx context.Context, source, target string, options []string) error {
	args := make([]string, 0, len(options)+2)
	args = append(args, options...)
	args = append(args, withTrailingSep(source), withTrailingSep(target))

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("binary", r.path).
		Strs("args", args).
		Msg("running rsync")

	out, err := r.run(ctx, r.path, args...)
	if err != nil {
		return errors.Errorf("rsync %s -> %s: %s: %w", source, target, strings.TrimSpace(string(out)), err)
	}

	return nil
}

// withTrailingSep appends the OS path separator if it is missing.
func withTrailingSep(path string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return path
	}
	return path + string(os.PathSeparator)
}
