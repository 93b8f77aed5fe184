// Package commands defines the hwgpg CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init <user-id>  Provision a hardware-backed identity, then open a shell
//   - shell           Open a shell against a fresh signing agent
//   - keys            List the keys in the identity keyring
//   - config write    Save the effective configuration
//
// # Implementation
//
// The root command loads the layered configuration, configures logging and
// builds the dependency graph (stores, collaborators, services) before any
// subcommand runs. Subcommands record the exit status of the session shell,
// which Execute returns to main.
package commands
