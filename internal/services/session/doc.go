// Package session runs an interactive shell against a freshly started
// signing agent and guarantees the agent is stopped afterwards.
//
// # Lifecycle
//
//	Idle -> AgentStarting -> AgentReady -> ShellRunning -> Cleanup -> Terminated
//
//  1. Take the identity lock so no other session or provisioning run can
//     interleave with the terminate/start sequence.
//  2. Show the keys in the identity keyring (informational only).
//  3. Terminate every running agent with the configured process name.
//  4. Start a new agent in its own process group.
//  5. Wait until the agent answers on its socket, or sleep a fixed delay.
//  6. Run the shell with GNUPGHOME pointing at the identity directory.
//  7. Stop the agent and release the lock, on every path once step 4
//     succeeded.
//
// # Signals
//
// SIGINT, SIGTERM and SIGHUP are intercepted for the whole launch. Until the
// shell runs any of them aborts startup. While the shell runs, SIGINT is
// left to the shell, which receives it from the terminal anyway; SIGTERM
// and SIGHUP hang up the shell and proceed to cleanup.
package session
