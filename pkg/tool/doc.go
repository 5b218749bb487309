/*
Package tool wraps the external executables a copy step delegates to.

🎯 Purpose:
- Narrow interfaces for the two delegated operations (Mirror, Chown)
- Production implementations that shell out to rsync and chown
- A named registry so plans can select a mirror implementation

📝 Design Philosophy:
The step never moves bytes itself. Everything that touches file content goes
through a child process, and everything that launches a child process lives
here, behind an interface small enough to fake in a unit test. Diagnostics
matter more than exit codes: failures carry the tool's combined output so the
step result can show the human what the tool said.
*/
package tool
