/*
Package status defines the result taxonomy of the two-phase step protocol.

	          +------------+
	          |   Result   |
	          | Code + Msg |
	          +-----+------+
	                |
	     +----------+----------+
	     |                     |
	+----+----+          +-----+-----+
	|  Code   |          |   Undo    |
	| (2xx..  |          | (actions) |
	|   5xx)  |          +-----------+
	+---------+

🎯 Purpose:
- Classify phase outcomes with an HTTP-like integer code
- Carry the human-readable message alongside the classification
- Transport the undo actions a successful check declares

🔄 Flow:
1. A step phase runs and builds a Result via the constructors (OKf, ...)
2. Check attaches undo declarations with WithUndo
3. The orchestrator routes on Code.Success / Code.Retryable

📝 Design Philosophy:
Failures travel as data, never as panics. The code tells the orchestrator
what to do next (skip, retry, stop, page a human); the message tells the
human what happened; the undo actions tell the rollback pass how to reverse
the step. Nothing in here touches the filesystem.

🔍 Example:

	res := status.PreconditionFailedf("source %q does not exist", src)
	if !res.Code.Success() {
		return res
	}
*/
package status
