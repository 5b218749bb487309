package undo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestInvoker_Invoke(t *testing.T) {
	tests := []struct {
		name        string
		action      Action
		handlerErr  error
		wantErr     bool
		errContains string
		wantPath    string
	}{
		{
			name:     "dispatches_to_registered_handler",
			action:   TrashTarget("/srv/live/www"),
			wantPath: "/srv/live/www",
		},
		{
			name:        "unknown_op",
			action:      Action{Op: "shred", Path: "/srv/live/www"},
			wantErr:     true,
			errContains: "undo op shred not found",
		},
		{
			name:        "handler_error_is_wrapped",
			action:      TrashTarget("/srv/live/www"),
			handlerErr:  errors.New("disk full"),
			wantErr:     true,
			errContains: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			inv := NewInvoker()
			inv.Register(OpTrash, func(ctx context.Context, path string) error {
				gotPath = path
				return tt.handlerErr
			})

			err := inv.Invoke(testContext(t), tt.action)
			if tt.wantErr {
				require.Error(t, err, "Invoke should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should explain the failure")
				return
			}
			require.NoError(t, err, "Invoke should succeed")
			assert.Equal(t, tt.wantPath, gotPath, "handler should receive the action path")
		})
	}
}

func TestInvoker_InvokeReverse(t *testing.T) {
	var order []string
	inv := NewInvoker()
	inv.Register(OpTrash, func(ctx context.Context, path string) error {
		order = append(order, path)
		return nil
	})

	actions := []Action{
		TrashTarget("/t/first"),
		TrashTarget("/t/second"),
		TrashTarget("/t/third"),
	}

	err := inv.InvokeReverse(testContext(t), actions)
	require.NoError(t, err, "InvokeReverse should succeed")
	assert.Equal(t, []string{"/t/third", "/t/second", "/t/first"}, order,
		"actions should run in reverse declaration order")
}

func TestInvoker_InvokeReverse_StopsOnFailure(t *testing.T) {
	var order []string
	inv := NewInvoker()
	inv.Register(OpTrash, func(ctx context.Context, path string) error {
		order = append(order, path)
		if path == "/t/second" {
			return errors.New("device busy")
		}
		return nil
	})

	actions := []Action{
		TrashTarget("/t/first"),
		TrashTarget("/t/second"),
		TrashTarget("/t/third"),
	}

	err := inv.InvokeReverse(testContext(t), actions)
	require.Error(t, err, "InvokeReverse should surface the handler failure")
	assert.Contains(t, err.Error(), "device busy", "error should carry the handler diagnostics")
	assert.Contains(t, err.Error(), "action 2 of 3", "error should identify the failed action")
	assert.Equal(t, []string{"/t/third", "/t/second"}, order,
		"actions after the failure should not run")
}

func TestAction_String(t *testing.T) {
	a := TrashTarget("/srv/live/www")
	assert.Equal(t, "trash /srv/live/www", a.String(), "String should render op and path")
}

func TestTrashHandler(t *testing.T) {
	ctx := testContext(t)
	tmp := t.TempDir()

	tr, err := NewTrash(TrashOptions{Dir: filepath.Join(tmp, "trash")})
	require.NoError(t, err, "NewTrash should succeed")

	inv := NewInvoker()
	inv.Register(OpTrash, TrashHandler(tr))

	t.Run("trashes_existing_path", func(t *testing.T) {
		victim := filepath.Join(tmp, "victim")
		require.NoError(t, os.MkdirAll(victim, 0o755), "creating victim dir")

		err := inv.Invoke(ctx, TrashTarget(victim))
		require.NoError(t, err, "Invoke should succeed")

		_, statErr := os.Stat(victim)
		assert.True(t, os.IsNotExist(statErr), "victim should be gone from its original path")

		entries, err := tr.List(ctx)
		require.NoError(t, err, "List should succeed")
		require.Len(t, entries, 1, "trash should hold the victim")
		assert.Equal(t, victim, entries[0].Original, "entry should record the original path")
	})

	t.Run("missing_path_counts_as_reversed", func(t *testing.T) {
		// A failed fix may never have materialized its target.
		err := inv.Invoke(ctx, TrashTarget(filepath.Join(tmp, "never-created")))
		assert.NoError(t, err, "an already-gone path is already reversed")
	})

	t.Run("protected_path_still_fails", func(t *testing.T) {
		guarded, err := NewTrash(TrashOptions{
			Dir:     filepath.Join(tmp, "trash-guarded"),
			Protect: []string{filepath.Join(tmp, "keep")},
		})
		require.NoError(t, err, "NewTrash should succeed")

		keep := filepath.Join(tmp, "keep")
		require.NoError(t, os.MkdirAll(keep, 0o755), "creating protected dir")

		err = TrashHandler(guarded)(ctx, keep)
		require.Error(t, err, "protection must not be swallowed")
		assert.ErrorIs(t, err, ErrProtected, "error should be the protection sentinel")
	})
}
