// Package app wires application dependencies for the CLI.
//
// It holds the runtime Config and builds the concrete collaborators (gpg,
// trezor-gpg, agent runner, process table, shell) and the provisioning and
// session services from it, exposing them via the Wire struct.
package app
