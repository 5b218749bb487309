/*
Package step implements the two-phase transactional copy step.

	+-----------+   check   +-----------+
	|orchestr-  | --------> | CopyStep  | --> Result(200) + undo: trash target
	|ator       |           | (decide)  | --> Result(304/400/412/500)
	|           |    fix    +-----+-----+
	|           | --------------> |
	+-----------+                 v
	                    +---------+---------+
	                    |  Mirror  | Chown  |
	                    | (rsync)  |(chown) |
	                    +-------------------+

🎯 Purpose:
- Decide whether a copy is applicable, already done, or impossible (check)
- Perform the copy and the optional ownership change (fix)
- Declare how the step is reversed: trash the target, never delete it

🔄 Flow:
1. The orchestrator runs check; a 200 result carries the undo declaration
2. The orchestrator runs fix; the mirror tool moves the bytes
3. On rollback the orchestrator invokes the declared undo actions
4. On recovery it re-runs the cycle with the Recovery flag set, and a
   partially written target is re-synced instead of refused

⚡ Key Responsibilities:
- The state machine over {check, fix} and the replay flags
- The status taxonomy contract (200/304/400/412/500)
- Nothing else: all file I/O lives behind the Mirror, Chown, and FS
  collaborators

🤝 Interfaces:
- FS: existence probes (check reads nothing but existence)
- tool.Mirror: recursive resumable transfer
- tool.Chown: recursive ownership change

📝 Design Philosophy:
The step carries no memory between phases. Everything it needs arrives in the
Request, so the orchestrator can check an entire transaction before mutating
anything, replay fix alone during recovery, and run the two phases in
different processes entirely. Idempotency falls out of the same property:
check refuses work that is already done (304), and fix re-run over a partial
target simply resumes, because the mirror tool is resumable.

🔍 Example:

	s, err := step.NewCopy(step.Options{Mirror: mirror, Chown: chown})
	if err != nil {
		return err
	}

	res := s.Run(ctx, step.Request{
		Source: "/srv/staging/www",
		Target: "/srv/live/www",
		Phase:  step.PhaseCheck,
	})
	if res.Code == status.OK {
		res = s.Run(ctx, step.Request{
			Source: "/srv/staging/www",
			Target: "/srv/live/www",
			Phase:  step.PhaseFix,
		})
	}
*/
package step
