/*
Package runner drives a configured plan through the two-phase protocol.

	+-------------+
	| Transaction |
	| (Orchestra) |
	+------+------+
	       |
	 check | every step first, read-only
	       v
	+------+------+
	|  Fix Pass   |
	| (Sequential)|
	+------+------+
	       |
	 fail? v reverse the undo queue
	+------+------+
	|  Rollback   |
	|  (Trash)    |
	+-------------+

🎯 Purpose:
- Runs the check phase over every selected step before touching anything
- Applies fixes strictly in plan order
- Collects declared undo actions and replays them in reverse on failure

🔄 Flow:
1. Select steps (all, or the ones matching --only patterns)
2. Check everything; a single failed check aborts before any mutation
3. Dry run stops here
4. Fix each step whose check was not a no-op
5. On a failed fix, invoke the queued undo actions newest-first

⚡ Key Responsibilities:
- Deciding the whole transaction before the first mutation
- Queueing each step's undo actions before its fix runs, so a fix that
  dies halfway still gets its partial target reversed
- Manual rollback of an already applied plan, reverse plan order

🤝 Interfaces:
- step.Step: executes one phase for one request
- undo.Invoker: dispatches declared undo actions
- config.Plan: the ordered steps plus the trash location

🔍 Example:

	tx, err := runner.New(runner.Options{
		Plan:    plan,
		Step:    copyStep,
		Invoker: invoker,
	})
	summary, err := tx.Run(ctx, runner.RunOptions{Parallel: true})

The runner keeps no journal. Every run re-derives state from the filesystem,
which is what the protocol's recovery flag is for: rerun with Recovery after
an interruption and already copied targets are re-synced instead of refused.
*/
package runner
