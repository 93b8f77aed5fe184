package domain

import (
	interfaces "hwgpg/internal/domain/interfaces"
	types "hwgpg/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID           = types.UserID
	Fingerprint      = types.Fingerprint
	Curve            = types.Curve
	Certificate      = types.Certificate
	Manifest         = types.Manifest
	ProvisionRequest = types.ProvisionRequest
	KeyRecord        = types.KeyRecord
	SessionState     = types.SessionState
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	SessionService  = interfaces.SessionService
	IdentityStore   = interfaces.IdentityStore
	Locker          = interfaces.Locker
	KeyGenerator    = interfaces.KeyGenerator
	Keyring         = interfaces.Keyring
	AgentProcess    = interfaces.AgentProcess
	AgentRunner     = interfaces.AgentRunner
	ProcessTable    = interfaces.ProcessTable
	ReadinessProbe  = interfaces.ReadinessProbe
	ShellRunner     = interfaces.ShellRunner
	Confirmer       = interfaces.Confirmer
)

const (
	CurveEd25519   = types.CurveEd25519
	CurveNIST256P1 = types.CurveNIST256P1

	StateIdle          = types.StateIdle
	StateAgentStarting = types.StateAgentStarting
	StateAgentReady    = types.StateAgentReady
	StateShellRunning  = types.StateShellRunning
	StateCleanup       = types.StateCleanup
	StateTerminated    = types.StateTerminated
)

// Curves lists every supported curve.
var Curves = types.Curves
