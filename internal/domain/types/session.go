package types

// SessionState is a step of the session launcher's lifecycle.
//
//	Idle -> AgentStarting -> AgentReady -> ShellRunning -> Cleanup -> Terminated
//
// Any state may jump to Cleanup on a fatal error. Cleanup always runs before
// Terminated once an agent handle exists.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAgentStarting
	StateAgentReady
	StateShellRunning
	StateCleanup
	StateTerminated
)

var sessionStateNames = [...]string{
	StateIdle:          "idle",
	StateAgentStarting: "agent-starting",
	StateAgentReady:    "agent-ready",
	StateShellRunning:  "shell-running",
	StateCleanup:       "cleanup",
	StateTerminated:    "terminated",
}

// String returns the lowercase name of the state.
func (s SessionState) String() string {
	if s < 0 || int(s) >= len(sessionStateNames) {
		return "unknown"
	}
	return sessionStateNames[s]
}
