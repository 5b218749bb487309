/*
Package undo declares reversal actions and provides the trash store that
executes them.

	+-----------+   declares    +-----------+   invokes    +-----------+
	|   check   | ------------> |  Actions  | -----------> |  Invoker  |
	|  (step)   |               | (result)  |  (rollback)  +-----+-----+
	+-----------+               +-----------+                    |
	                                                       +-----+-----+
	                                                       |   Trash   |
	                                                       | (storage) |
	                                                       +-----------+

🎯 Purpose:
- Describe how a step is reversed (Action: op name + path argument)
- Dispatch declared actions to handlers during rollback (Invoker)
- Hold reversed targets in a recoverable area instead of deleting them (Trash)

🔄 Flow:
1. A step's check phase declares TrashTarget(target) in its result
2. The orchestrator queues declared actions as fixes run
3. On failure it replays the queue in reverse through the Invoker
4. The trash handler renames each path into the holding area and records it

📝 Design Philosophy:
Rollback must never destroy data. A fix that half-completed is moved aside,
not removed, so a rollback can itself be inspected or reversed. The trash
index (trash.json) is the only persistent record this package keeps; it is
written atomically and lists enough to restore every entry.

🔍 Example:

	tr, _ := undo.NewTrash(undo.TrashOptions{Dir: "/var/lib/copytx/trash"})

	inv := undo.NewInvoker()
	inv.Register(undo.OpTrash, func(ctx context.Context, path string) error {
		_, err := tr.Put(ctx, path)
		return err
	})

	err := inv.InvokeReverse(ctx, result.Undo)
*/
package undo
