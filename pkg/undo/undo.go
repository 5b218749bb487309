package undo

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// OpTrash moves a path into the recoverable trash area instead of deleting it.
const OpTrash = "trash"

// 🔄 Action is a declared reversal instruction. A step declares actions during
// its check phase; the orchestrator invokes them on rollback.
type Action struct {
	Op   string `json:"op"`   // action identifier (e.g. "trash")
	Path string `json:"path"` // path argument passed to the handler
}

// TrashTarget is the canonical undo declaration for a copied target.
func TrashTarget(path string) Action {
	return Action{Op: OpTrash, Path: path}
}

// String renders like "trash /srv/live/www".
func (a Action) String() string {
	return fmt.Sprintf("%s %s", a.Op, a.Path)
}

// HandlerFunc executes one declared action during rollback.
type HandlerFunc func(ctx context.Context, path string) error

// 🔧 Invoker dispatches declared actions to the handlers registered for
// their op names.
type Invoker struct {
	handlers map[string]HandlerFunc
}

// 🏭 NewInvoker creates an invoker with no handlers registered.
func NewInvoker() *Invoker {
	return &Invoker{handlers: map[string]HandlerFunc{}}
}

// Register binds a handler to an op name, replacing any previous binding.
func (i *Invoker) Register(op string, fn HandlerFunc) {
	i.handlers[op] = fn
}

// Invoke runs the handler registered for the action's op.
func (i *Invoker) Invoke(ctx context.Context, action Action) error {
	fn, ok := i.handlers[action.Op]
	if !ok {
		options := []string{}
		for k := range i.handlers {
			options = append(options, k)
		}
		return errors.Errorf("undo op %s not found, options: %s", action.Op, strings.Join(options, ", "))
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("op", action.Op).
		Str("path", action.Path).
		Msg("invoking undo action")

	if err := fn(ctx, action.Path); err != nil {
		return errors.Errorf("invoking %s on %q: %w", action.Op, action.Path, err)
	}

	return nil
}

// InvokeReverse runs declared actions in reverse declaration order, stopping
// at the first failure.
func (i *Invoker) InvokeReverse(ctx context.Context, actions []Action) error {
	for idx := len(actions) - 1; idx >= 0; idx-- {
		if err := i.Invoke(ctx, actions[idx]); err != nil {
			return errors.Errorf("undoing action %d of %d: %w", idx+1, len(actions), err)
		}
	}
	return nil
}

// TrashHandler adapts a Trash into the handler for OpTrash declarations. A
// path that no longer exists counts as already reversed: a failed fix may
// never have materialized its target.
func TrashHandler(tr *Trash) HandlerFunc {
	return func(ctx context.Context, path string) error {
		_, err := tr.Put(ctx, path)
		if errors.Is(err, ErrNotExists) {
			zerolog.Ctx(ctx).Debug().
				Str("path", path).
				Msg("nothing to trash")
			return nil
		}
		return err
	}
}
